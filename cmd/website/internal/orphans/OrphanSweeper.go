package orphans

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/createbucketoptions"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/adampresley/weddinggallery/pkg/services"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var validExt = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic"}

type OrphanSweeper interface {
	EnsureBucketExists() error
	Sweep() (int, error)
}

type OrphanSweeperConfig struct {
	AwsBucket       string
	AwsRegion       string
	GracePeriod     time.Duration
	Now             func() time.Time
	PhotoService    services.PhotoStorer
	S3Client        s3.S3Client
	SettingsService services.SettingsServicer
	ShutdownCtx     context.Context
	UploadFolder    string
}

/*
OrphanSweeperService deletes uploaded objects that no photo record or
header setting points at. This happens when the upload succeeded but
the batch commit did not.
*/
type OrphanSweeperService struct {
	awsBucket       string
	awsRegion       string
	gracePeriod     time.Duration
	now             func() time.Time
	photoService    services.PhotoStorer
	s3Client        s3.S3Client
	settingsService services.SettingsServicer
	shutdownCtx     context.Context
	uploadFolder    string
}

func NewOrphanSweeperService(config OrphanSweeperConfig) OrphanSweeperService {
	if config.Now == nil {
		config.Now = time.Now
	}

	if config.ShutdownCtx == nil {
		config.ShutdownCtx = context.Background()
	}

	return OrphanSweeperService{
		awsBucket:       config.AwsBucket,
		awsRegion:       config.AwsRegion,
		gracePeriod:     config.GracePeriod,
		now:             config.Now,
		photoService:    config.PhotoService,
		s3Client:        config.S3Client,
		settingsService: config.SettingsService,
		shutdownCtx:     config.ShutdownCtx,
		uploadFolder:    config.UploadFolder,
	}
}

func (c OrphanSweeperService) EnsureBucketExists() error {
	var (
		err    error
		exists bool
	)

	exists, err = c.s3Client.BucketExists(c.awsBucket)

	if err != nil {
		return fmt.Errorf("error ensuring bucket '%s' exists: %w", c.awsBucket, err)
	}

	if exists {
		return nil
	}

	slog.Info("creating bucket", "bucketName", c.awsBucket)

	err = c.s3Client.CreateBucket(
		c.awsBucket,
		createbucketoptions.WithRegion(c.awsRegion),
	)

	if err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", c.awsBucket, err)
	}

	return nil
}

/*
Sweep deletes orphaned objects older than the grace period and returns
how many were removed.
*/
func (c OrphanSweeperService) Sweep() (int, error) {
	var (
		err      error
		header   models.HeaderSettings
		known    []string
		response s3.ListResponse
	)

	ctx, cancel := context.WithTimeout(c.shutdownCtx, time.Minute)
	defer cancel()

	if known, err = c.photoService.GetAllURLs(ctx); err != nil {
		return 0, fmt.Errorf("error retrieving photo URLs: %w", err)
	}

	/*
	 * Without the header settings the live background would look like an
	 * orphan, so skip this sweep entirely.
	 */
	if header, err = c.settingsService.GetHeader(ctx); err != nil {
		return 0, fmt.Errorf("error retrieving header settings: %w", err)
	}

	if header.BackgroundURL != "" {
		known = append(known, header.BackgroundURL)
	}

	response, err = c.s3Client.List(
		c.awsBucket,
		c.uploadFolder,
		listoptions.WithGetAll(),
		listoptions.WithFilter(func(obj types.Object) bool {
			ext := strings.ToLower(filepath.Ext(aws.ToString(obj.Key)))
			return slices.IsInSlice(ext, validExt)
		}),
	)

	if err != nil {
		return 0, fmt.Errorf("error listing uploaded objects: %w", err)
	}

	orphans := FindOrphans(response.Objects, known, c.now().Add(-c.gracePeriod))

	if len(orphans) == 0 {
		return 0, nil
	}

	slog.Info("deleting orphaned uploads", "count", len(orphans), "bucket", c.awsBucket)

	if _, err = c.s3Client.Delete(c.awsBucket, orphans); err != nil {
		return 0, fmt.Errorf("error deleting orphaned uploads: %w", err)
	}

	return len(orphans), nil
}

/*
FindOrphans returns the keys of objects last modified before cutoff
whose file name does not appear in any known URL. Upload keys end in a
UUID, so the file name alone identifies the object.
*/
func FindOrphans(objects []s3.Object, knownURLs []string, cutoff time.Time) []string {
	referenced := make(map[string]struct{}, len(knownURLs))

	for _, known := range knownURLs {
		if name := fileNameFromURL(known); name != "" {
			referenced[name] = struct{}{}
		}
	}

	result := []string{}

	for _, obj := range objects {
		if !obj.LastModified.Before(cutoff) {
			continue
		}

		if _, ok := referenced[path.Base(obj.Key)]; ok {
			continue
		}

		result = append(result, obj.Key)
	}

	return result
}

func fileNameFromURL(raw string) string {
	u, err := url.Parse(raw)

	if err != nil || u.Path == "" {
		return ""
	}

	return path.Base(u.Path)
}
