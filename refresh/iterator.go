// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/concierge/retry"
	"github.com/poiesic/concierge/upstream"
)

const (
	// DefaultPageSize is the default number of residences to fetch per page
	DefaultPageSize = 100
)

// Pager reads the catalog one page at a time. Pages start at 1.
type Pager interface {
	ListResidences(ctx context.Context, page, limit int) (*upstream.Page, error)
}

// PageIterator walks catalog pages in order.
type PageIterator struct {
	pager      Pager
	pageSize   int
	maxRetries int
	retryDelay time.Duration
}

// NewPageIterator creates a new page iterator.
// pageSize: number of residences per page (defaults when <= 0)
func NewPageIterator(pager Pager, pageSize, maxRetries int, retryDelay time.Duration) *PageIterator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &PageIterator{
		pager:      pager,
		pageSize:   pageSize,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// ForEach fetches pages starting at first, calling fn for each non-empty page.
// Transient upstream failures are retried with backoff.
// Iteration stops on first error from fn or after the last page.
func (it *PageIterator) ForEach(ctx context.Context, first int, fn func(*upstream.Page) error) error {
	if first < 1 {
		first = 1
	}
	for n := first; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var page *upstream.Page
		err := retry.WithBackoffIf(ctx, func() error {
			var err error
			page, err = it.pager.ListResidences(ctx, n, it.pageSize)
			return err
		}, it.maxRetries, it.retryDelay, retry.Transient)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", n, err)
		}

		if len(page.Residences) == 0 {
			return nil
		}
		if page.Page == 0 {
			page.Page = n
		}
		if page.Limit == 0 {
			page.Limit = it.pageSize
		}
		if err := fn(page); err != nil {
			return err
		}
		if page.Last() {
			return nil
		}
	}
}
