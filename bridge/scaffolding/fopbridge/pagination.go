// Package fopbridge provides the response envelopes shared by the bridges.
package fopbridge

import (
	"encoding/json"
	"net/http"

	"github.com/jrazmi/helix/core/scaffolding/fop"
)

// RecordID is the data model used when returning a create/update ID.
type RecordID struct {
	ID string `json:"id"`
}

// CodeResponse provides a standard response with code and message
type CodeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewCodeResponse(code, message string) CodeResponse {
	return CodeResponse{Code: code, Message: message}
}

func (c CodeResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

// RecordResponse wraps a single record
type RecordResponse[T any] struct {
	Record T `json:"record"`
	status int
}

func NewRecordResponse[T any](record T) RecordResponse[T] {
	return RecordResponse[T]{Record: record, status: http.StatusOK}
}

// NewCreatedResponse wraps a record that was just inserted.
func NewCreatedResponse[T any](record T) RecordResponse[T] {
	return RecordResponse[T]{Record: record, status: http.StatusCreated}
}

func (r RecordResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}

func (r RecordResponse[T]) HTTPStatus() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// PaginatedResponse is a page of records with its cursors.
type PaginatedResponse[T any, C comparable] struct {
	Records  []T         `json:"records"`
	PageInfo PageInfo[C] `json:"pageInfo"`
}

// PageInfo is a generic page info structure that works with any cursor type
type PageInfo[C comparable] struct {
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
	Limit      int  `json:"limit,omitempty"`
	NextCursor *C   `json:"nextCursor,omitempty"`
	PageTotal  int  `json:"pageTotal"`
}

// Encode implements the encoder interface for the paginated response
func (p PaginatedResponse[T, C]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(p)
	return data, "application/json", err
}

// NewPaginatedResponseFromStringCursorInfo converts a repository page into
// the wire envelope. A nil records slice renders as [].
func NewPaginatedResponseFromStringCursorInfo[T any](records []T, pageInfo fop.PageInfoStringCursor) PaginatedResponse[T, string] {
	if records == nil {
		records = []T{}
	}

	genericPageInfo := PageInfo[string]{
		HasPrev:   pageInfo.HasPrev,
		HasNext:   pageInfo.HasNext,
		Limit:     pageInfo.Limit,
		PageTotal: len(records),
	}

	if pageInfo.NextCursor != "" {
		genericPageInfo.NextCursor = &pageInfo.NextCursor
	}

	return PaginatedResponse[T, string]{
		Records:  records,
		PageInfo: genericPageInfo,
	}
}

// NonPaginatedRecords wraps a complete result set.
type NonPaginatedRecords[T any] struct {
	Records []T `json:"records"`
}

func NewNonPaginatedRecords[T any](records []T) NonPaginatedRecords[T] {
	if records == nil {
		records = []T{}
	}
	return NonPaginatedRecords[T]{Records: records}
}

func (n NonPaginatedRecords[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(n)
	return data, "application/json", err
}

// CountResult is the record returned by count endpoints.
type CountResult struct {
	Count int64 `json:"count"`
}
