package search

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/Sternrassler/fsf-client/pkg/apierrors"
)

// File is a path to a text file holding one identifier per line.
type File string

// ReadFile loads identifiers from path. Blank lines are skipped.
func ReadFile(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open search file: %w", err)
	}
	defer f.Close()

	var items []Item
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		item, err := Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read search file: %w", err)
	}

	return items, nil
}

// Resolve normalizes a search input into an ordered, non-empty item list.
//
// Accepted inputs: Item, []Item, string (one identifier), []string, int,
// int64, []int, []int64 (FSIDs) and File. An empty result yields
// ErrInvalidArgument and any other input type yields ErrInvalidType.
func Resolve(input any) ([]Item, error) {
	var items []Item

	switch v := input.(type) {
	case nil:
		return nil, fmt.Errorf("%w: search input is empty", apierrors.ErrInvalidArgument)
	case Item:
		items = []Item{v}
	case []Item:
		items = append(items, v...)
	case string:
		item, err := Parse(v)
		if err != nil {
			return nil, err
		}
		items = []Item{item}
	case []string:
		items = make([]Item, 0, len(v))
		for _, s := range v {
			item, err := Parse(s)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	case int:
		items = []Item{FSID(strconv.Itoa(v))}
	case int64:
		items = []Item{FSID(strconv.FormatInt(v, 10))}
	case []int:
		items = make([]Item, 0, len(v))
		for _, id := range v {
			items = append(items, FSID(strconv.Itoa(id)))
		}
	case []int64:
		items = make([]Item, 0, len(v))
		for _, id := range v {
			items = append(items, FSID(strconv.FormatInt(id, 10)))
		}
	case File:
		var err error
		items, err = ReadFile(string(v))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unsupported search input %T", apierrors.ErrInvalidType, input)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: search input resolved to no items", apierrors.ErrInvalidArgument)
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("search item %d: %w", i, err)
		}
	}

	return items, nil
}

// Batches yields consecutive chunks of at most size items, preserving order.
// A size <= 0 yields all items as a single batch.
func Batches(items []Item, size int) iter.Seq[[]Item] {
	return func(yield func([]Item) bool) {
		if len(items) == 0 {
			return
		}
		n := size
		if n <= 0 {
			n = len(items)
		}
		for start := 0; start < len(items); start += n {
			end := min(start+n, len(items))
			if !yield(items[start:end:end]) {
				return
			}
		}
	}
}
