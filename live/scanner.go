package live

import (
	"context"
	"errors"
	"fmt"
)

// Default scan budget: 15 pages of 100 messages.
const (
	DefaultMaxPages = 15
	DefaultPageSize = 100
	MaxPageSize     = 100
)

// MessageSource returns up to limit messages newest-first. An empty before starts at the
// most recent message; otherwise only messages strictly older than before are returned.
type MessageSource interface {
	Messages(ctx context.Context, limit int, before string) ([]Message, error)
}

// Scanner pages backwards through channel history looking for the latest live notification.
type Scanner struct {
	Source   MessageSource
	MaxPages int
	PageSize int
}

// ScanResult describes one scan. Message is nil when nothing matched.
type ScanResult struct {
	Message *Message
	Pages   int
	Scanned int
}

// Scan requests pages sequentially until a live message is found, a page comes back empty
// or MaxPages have been fetched. The first fetch error aborts the scan.
// Callers that record scan counts use Scan; FindLastLive drops them.
func (s *Scanner) Scan(ctx context.Context) (ScanResult, error) {
	var res ScanResult
	if s.Source == nil {
		return res, errors.New("scanner has no message source")
	}
	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	pageSize := s.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	before := ""
	for res.Pages < maxPages {
		page, err := s.Source.Messages(ctx, pageSize, before)
		res.Pages++
		if err != nil {
			return res, fmt.Errorf("fetch page %d: %w", res.Pages, err)
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			res.Scanned++
			if IsLive(page[i]) {
				m := page[i]
				res.Message = &m
				return res, nil
			}
		}
		before = page[len(page)-1].ID
	}
	return res, nil
}

// FindLastLive returns the most recent live notification, or nil if none was found
// within the page budget.
func (s *Scanner) FindLastLive(ctx context.Context) (*Message, error) {
	res, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return res.Message, nil
}
