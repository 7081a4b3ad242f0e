package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/alitto/pond/v2"
)

const (
	DefaultMaxParallelUploads = 5
)

// Uploader pushes one file to the image CDN and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file models.UploadFile) (string, error)
}

type ProgressFunc func(progress models.UploadProgress)

type UploadOrchestrator interface {
	UploadAll(ctx context.Context, files []models.UploadFile, onProgress ProgressFunc) []models.UploadResult
}

type UploadOrchestratorConfig struct {
	MaxConcurrency int
	Uploader       Uploader
}

type UploadOrchestratorService struct {
	maxConcurrency int
	uploader       Uploader
}

func NewUploadOrchestrator(config UploadOrchestratorConfig) UploadOrchestratorService {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultMaxParallelUploads
	}

	return UploadOrchestratorService{
		maxConcurrency: config.MaxConcurrency,
		uploader:       config.Uploader,
	}
}

/*
UploadAll uploads every file with at most maxConcurrency requests in
flight. Exactly one result per file is returned, in completion order.
Callers correlate results to input files through UploadResult.Index.

onProgress is called after every file resolves, one call at a time.
*/
func (o UploadOrchestratorService) UploadAll(ctx context.Context, files []models.UploadFile, onProgress ProgressFunc) []models.UploadResult {
	var (
		mu       sync.Mutex
		progress = models.UploadProgress{Total: len(files)}
		resolved = make([]bool, len(files))
	)

	results := make([]models.UploadResult, 0, len(files))

	if len(files) == 0 {
		return results
	}

	workers := min(o.maxConcurrency, len(files))

	record := func(result models.UploadResult) {
		mu.Lock()
		defer mu.Unlock()

		if resolved[result.Index] {
			return
		}

		resolved[result.Index] = true
		results = append(results, result)

		if result.Success {
			progress.Completed++
		} else {
			progress.Failed++
		}

		if onProgress != nil {
			onProgress(progress)
		}
	}

	pool := pond.NewPool(workers, pond.WithContext(ctx))

	for index, file := range files {
		task := models.UploadTask{File: file, Index: index}

		pool.Submit(func() {
			record(o.uploadOne(ctx, task))
		})
	}

	_ = pool.Stop().Wait()

	/*
	 * Tasks dropped by a canceled pool never ran. Report them as
	 * failures so the caller still gets one result per file.
	 */
	for index := range files {
		if !resolved[index] {
			record(models.UploadResult{Success: false, Index: index, Error: "upload canceled"})
		}
	}

	return results
}

func (o UploadOrchestratorService) uploadOne(ctx context.Context, task models.UploadTask) models.UploadResult {
	if err := ctx.Err(); err != nil {
		return models.UploadResult{Success: false, Index: task.Index, Error: "upload canceled"}
	}

	url, err := o.uploader.Upload(ctx, task.File)

	if err != nil {
		slog.Error("error uploading file", "file", task.File.Name, "index", task.Index, "error", err)
		return models.UploadResult{Success: false, Index: task.Index, Error: err.Error()}
	}

	if url == "" {
		return models.UploadResult{Success: false, Index: task.Index, Error: "no URL received"}
	}

	return models.UploadResult{Success: true, Index: task.Index, URL: url}
}

// SuccessfulURLs returns the URLs of successful results in result order.
func SuccessfulURLs(results []models.UploadResult) []string {
	urls := make([]string, 0, len(results))

	for _, r := range results {
		if r.Success {
			urls = append(urls, r.URL)
		}
	}

	return urls
}

func FailedCount(results []models.UploadResult) int {
	failed := 0

	for _, r := range results {
		if !r.Success {
			failed++
		}
	}

	return failed
}
