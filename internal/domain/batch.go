package domain

import (
	"fmt"
	"sort"
)

// BatchResult records per-account outcomes of a multi-account operation.
type BatchResult struct {
	OperationID string
	Succeeded   []string
	Failed      map[string]error
	Skipped     []string
}

func NewBatchResult(operationID string) BatchResult {
	return BatchResult{OperationID: operationID, Failed: map[string]error{}}
}

func (r *BatchResult) Succeed(username string) {
	r.Succeeded = append(r.Succeeded, username)
}

func (r *BatchResult) Fail(username string, err error) {
	if r.Failed == nil {
		r.Failed = map[string]error{}
	}
	r.Failed[username] = err
}

func (r *BatchResult) Skip(username string) {
	r.Skipped = append(r.Skipped, username)
}

func (r BatchResult) FailedUsernames() []string {
	names := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (r BatchResult) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped as duplicate", len(r.Succeeded), len(r.Failed), len(r.Skipped))
}

type Unavailable struct {
	Reference string
	Reason    string
}

type DownloadResult struct {
	Item        ContentItem
	Path        string
	Unavailable *Unavailable
}

type RepostResult struct {
	Item        ContentItem
	Batch       BatchResult
	Unavailable *Unavailable
}
