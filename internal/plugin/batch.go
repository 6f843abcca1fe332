package plugin

import (
	"github.com/danielolaszy/rh-issue/internal/console"
)

// ItemResult is the outcome for one batch item.
type ItemResult struct {
	Item   string
	OK     bool
	Detail string
	Err    error
}

// BatchReport collects per-item outcomes of a batch command. A batch keeps
// going after an item fails; it succeeds only if every item did.
type BatchReport struct {
	Items []ItemResult
}

// Succeed records a successful item.
func (r *BatchReport) Succeed(item, detail string) {
	r.Items = append(r.Items, ItemResult{Item: item, OK: true, Detail: detail})
}

// Fail records a failed item.
func (r *BatchReport) Fail(item string, err error) {
	r.Items = append(r.Items, ItemResult{Item: item, Err: err})
}

// Counts returns the number of successful and failed items.
func (r *BatchReport) Counts() (succeeded, failed int) {
	for _, it := range r.Items {
		if it.OK {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// OK reports whether no item failed.
func (r *BatchReport) OK() bool {
	_, failed := r.Counts()
	return failed == 0
}

// Print writes one line per item and a summary, and returns OK.
func (r *BatchReport) Print(out *console.Printer) bool {
	for _, it := range r.Items {
		if it.OK {
			if it.Detail != "" {
				out.Success("%s: %s", it.Item, it.Detail)
			} else {
				out.Success("%s", it.Item)
			}
			continue
		}
		out.Fail("%s: %v", it.Item, it.Err)
	}

	succeeded, failed := r.Counts()
	if failed > 0 {
		out.Warn("%d of %d items failed", failed, succeeded+failed)
	} else {
		out.Info("%d items processed", succeeded)
	}
	return failed == 0
}
