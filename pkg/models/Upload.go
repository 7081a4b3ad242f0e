package models

import (
	"io"
	"time"
)

/*
UploadFile is a file waiting to be pushed to the upload endpoint.
Open may be called more than once.
*/
type UploadFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

type UploadTask struct {
	File  UploadFile
	Index int
}

type UploadResult struct {
	Success bool
	Index   int
	URL     string
	Error   string
}

type UploadProgress struct {
	Total     int
	Completed int
	Failed    int
}

func (p UploadProgress) Done() int {
	return p.Completed + p.Failed
}

func (p UploadProgress) Percent() int {
	if p.Total == 0 {
		return 0
	}

	return (p.Done() * 100) / p.Total
}

type UploadJobStatus string

const (
	UploadJobRunning   UploadJobStatus = "running"
	UploadJobCommitted UploadJobStatus = "committed"
	UploadJobPartial   UploadJobStatus = "partial"
	UploadJobFailed    UploadJobStatus = "failed"
)

type UploadJob struct {
	ID         string
	ClientSlug string
	Album      string
	Progress   UploadProgress
	Status     UploadJobStatus
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (j UploadJob) IsFinished() bool {
	return j.Status != UploadJobRunning
}
