package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cabiir/FianlFitnessGym/internal/models"
	"github.com/cabiir/FianlFitnessGym/internal/repository"
	"github.com/cabiir/FianlFitnessGym/internal/validation"
)

type stubTrailRepo struct {
	trails     map[int64]*models.Trail
	nextID     int64
	createErr  error
	updateErr  error
	lastCreate repository.TrailInput
	lastUpdate repository.TrailInput
	lastList   string
}

func newStubTrailRepo() *stubTrailRepo {
	return &stubTrailRepo{trails: map[int64]*models.Trail{}, nextID: 1}
}

func (r *stubTrailRepo) Create(_ context.Context, input repository.TrailInput) (*models.Trail, error) {
	r.lastCreate = input
	if r.createErr != nil {
		return nil, r.createErr
	}
	trail := &models.Trail{
		ID:          r.nextID,
		Title:       input.Title,
		Category:    input.Category,
		Duration:    input.Duration,
		Intensity:   input.Intensity,
		Description: input.Description,
		Image:       input.Image,
		Workouts:    models.DefaultWorkoutsLabel,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
	r.trails[trail.ID] = trail
	r.nextID++
	copied := *trail
	return &copied, nil
}

func (r *stubTrailRepo) List(_ context.Context, category string) ([]models.Trail, error) {
	r.lastList = category
	trails := make([]models.Trail, 0, len(r.trails))
	for _, trail := range r.trails {
		if category == "" || trail.Category == category {
			trails = append(trails, *trail)
		}
	}
	return trails, nil
}

func (r *stubTrailRepo) GetByID(_ context.Context, id int64) (*models.Trail, error) {
	trail, ok := r.trails[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *trail
	return &copied, nil
}

func (r *stubTrailRepo) Update(_ context.Context, id int64, input repository.TrailInput) (*models.Trail, error) {
	r.lastUpdate = input
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	trail, ok := r.trails[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	trail.Title = input.Title
	trail.Category = input.Category
	trail.Duration = input.Duration
	trail.Intensity = input.Intensity
	trail.Description = input.Description
	trail.Image = input.Image
	copied := *trail
	return &copied, nil
}

func (r *stubTrailRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.trails[id]; !ok {
		return false, nil
	}
	delete(r.trails, id)
	return true, nil
}

type failingDeleteStorage struct {
	*LocalImageStorage
	deleteErr error
}

func (s *failingDeleteStorage) DeleteImage(_ context.Context, _ string) error {
	return s.deleteErr
}

var testTime = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestStorage(t *testing.T) *LocalImageStorage {
	t.Helper()
	storage, err := NewLocalImageStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalImageStorage: %v", err)
	}
	return storage
}

func newImage(name, content string) *ImageUpload {
	return &ImageUpload{File: strings.NewReader(content), Filename: name, Size: int64(len(content))}
}

func validTrailInput() TrailInput {
	return TrailInput{
		Title:       "  Hill Repeats ",
		Category:    "Advanced",
		Duration:    "6 weeks",
		Intensity:   "High",
		Description: "Climb",
	}
}

func imageFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestTrailServiceCreateStoresImageAndNormalisesFields(t *testing.T) {
	repo := newStubTrailRepo()
	storage := newTestStorage(t)
	service := &TrailService{trailRepo: repo, storageService: storage}

	trail, err := service.CreateTrail(context.Background(), validTrailInput(), newImage("hill.PNG", "png"))
	if err != nil {
		t.Fatalf("CreateTrail: %v", err)
	}

	if repo.lastCreate.Title != "Hill Repeats" {
		t.Fatalf("expected trimmed title, got %q", repo.lastCreate.Title)
	}
	if repo.lastCreate.Category != "advanced" {
		t.Fatalf("expected lower-cased category, got %q", repo.lastCreate.Category)
	}
	if !strings.HasPrefix(trail.Image, "trail-") || !strings.HasSuffix(trail.Image, ".png") {
		t.Fatalf("unexpected filename %q", trail.Image)
	}
	if trail.Workouts != models.DefaultWorkoutsLabel {
		t.Fatalf("unexpected workouts %q", trail.Workouts)
	}
	content, err := os.ReadFile(filepath.Join(storage.Dir(), trail.Image))
	if err != nil || string(content) != "png" {
		t.Fatalf("expected stored image, got %q (%v)", content, err)
	}
}

func TestTrailServiceCreateRequiresImage(t *testing.T) {
	service := &TrailService{trailRepo: newStubTrailRepo(), storageService: newTestStorage(t)}

	if _, err := service.CreateTrail(context.Background(), validTrailInput(), nil); !errors.Is(err, ErrImageRequired) {
		t.Fatalf("expected ErrImageRequired, got %v", err)
	}
}

func TestTrailServiceCreateValidatesBeforeStoringImage(t *testing.T) {
	storage := newTestStorage(t)
	service := &TrailService{trailRepo: newStubTrailRepo(), storageService: storage}

	input := validTrailInput()
	input.Intensity = "Extreme"
	_, err := service.CreateTrail(context.Background(), input, newImage("a.png", "png"))
	if _, ok := validation.Fields(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if files := imageFiles(t, storage.Dir()); len(files) != 0 {
		t.Fatalf("expected no stored files, got %v", files)
	}
}

func TestTrailServiceCreateRejectsUnsupportedImage(t *testing.T) {
	service := &TrailService{trailRepo: newStubTrailRepo(), storageService: newTestStorage(t)}

	if _, err := service.CreateTrail(context.Background(), validTrailInput(), newImage("notes.pdf", "pdf")); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}

	big := &ImageUpload{File: strings.NewReader("x"), Filename: "big.png", Size: MaxImageSize + 1}
	if _, err := service.CreateTrail(context.Background(), validTrailInput(), big); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}

func TestTrailServiceCreateDeletesUploadWhenInsertFails(t *testing.T) {
	repo := newStubTrailRepo()
	repo.createErr = errors.New("insert failed")
	storage := newTestStorage(t)
	service := &TrailService{trailRepo: repo, storageService: storage}

	if _, err := service.CreateTrail(context.Background(), validTrailInput(), newImage("a.png", "png")); err == nil {
		t.Fatalf("expected create error")
	}
	if files := imageFiles(t, storage.Dir()); len(files) != 0 {
		t.Fatalf("expected upload to be cleaned up, got %v", files)
	}
}

func TestTrailServiceCreateSurfacesCleanupFailure(t *testing.T) {
	createErr := errors.New("insert failed")
	deleteErr := errors.New("delete failed")
	repo := newStubTrailRepo()
	repo.createErr = createErr
	service := &TrailService{
		trailRepo:      repo,
		storageService: &failingDeleteStorage{LocalImageStorage: newTestStorage(t), deleteErr: deleteErr},
	}

	_, err := service.CreateTrail(context.Background(), validTrailInput(), newImage("a.png", "png"))
	if !errors.Is(err, createErr) || !errors.Is(err, deleteErr) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestTrailServiceUpdateReplacesImage(t *testing.T) {
	repo := newStubTrailRepo()
	storage := newTestStorage(t)
	service := &TrailService{trailRepo: repo, storageService: storage}
	ctx := context.Background()

	created, err := service.CreateTrail(ctx, validTrailInput(), newImage("old.png", "old"))
	if err != nil {
		t.Fatalf("CreateTrail: %v", err)
	}

	title := "Longer Hills"
	updated, err := service.UpdateTrail(ctx, created.ID, TrailPatch{Title: &title}, newImage("new.jpg", "new"))
	if err != nil {
		t.Fatalf("UpdateTrail: %v", err)
	}

	if updated.Title != "Longer Hills" || updated.Category != "advanced" {
		t.Fatalf("unexpected merged trail %+v", updated)
	}
	if updated.Image == created.Image {
		t.Fatalf("expected a new image filename")
	}
	files := imageFiles(t, storage.Dir())
	if len(files) != 1 || files[0] != updated.Image {
		t.Fatalf("expected only the new image on disk, got %v", files)
	}
}

func TestTrailServiceUpdateKeepsImageWithoutUpload(t *testing.T) {
	repo := newStubTrailRepo()
	storage := newTestStorage(t)
	service := &TrailService{trailRepo: repo, storageService: storage}
	ctx := context.Background()

	created, err := service.CreateTrail(ctx, validTrailInput(), newImage("keep.png", "keep"))
	if err != nil {
		t.Fatalf("CreateTrail: %v", err)
	}

	intensity := "Medium"
	updated, err := service.UpdateTrail(ctx, created.ID, TrailPatch{Intensity: &intensity}, nil)
	if err != nil {
		t.Fatalf("UpdateTrail: %v", err)
	}
	if updated.Image != created.Image || updated.Intensity != "Medium" {
		t.Fatalf("unexpected trail %+v", updated)
	}
}

func TestTrailServiceUpdateDeletesNewUploadWhenUpdateFails(t *testing.T) {
	repo := newStubTrailRepo()
	storage := newTestStorage(t)
	service := &TrailService{trailRepo: repo, storageService: storage}
	ctx := context.Background()

	created, err := service.CreateTrail(ctx, validTrailInput(), newImage("old.png", "old"))
	if err != nil {
		t.Fatalf("CreateTrail: %v", err)
	}

	repo.updateErr = errors.New("update failed")
	if _, err := service.UpdateTrail(ctx, created.ID, TrailPatch{}, newImage("new.png", "new")); err == nil {
		t.Fatalf("expected update error")
	}
	// the previous image is removed before the row is written
	if files := imageFiles(t, storage.Dir()); len(files) != 0 {
		t.Fatalf("expected new upload to be removed, got %v", files)
	}
}

func TestTrailServiceUpdateMissingTrail(t *testing.T) {
	service := &TrailService{trailRepo: newStubTrailRepo(), storageService: newTestStorage(t)}

	if _, err := service.UpdateTrail(context.Background(), 99, TrailPatch{}, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTrailServiceDeleteRemovesImage(t *testing.T) {
	repo := newStubTrailRepo()
	storage := newTestStorage(t)
	service := &TrailService{trailRepo: repo, storageService: storage}
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(storage.Dir(), "foo.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	repo.trails[1] = &models.Trail{ID: 1, Title: "T", Category: "beginner", Image: "foo.png"}

	if err := service.DeleteTrail(ctx, 1); err != nil {
		t.Fatalf("DeleteTrail: %v", err)
	}
	if _, err := os.Stat(filepath.Join(storage.Dir(), "foo.png")); !os.IsNotExist(err) {
		t.Fatalf("expected image to be removed, stat err %v", err)
	}
	if err := service.DeleteTrail(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestTrailServiceListTreatsAllAsNoFilter(t *testing.T) {
	repo := newStubTrailRepo()
	service := &TrailService{trailRepo: repo, storageService: newTestStorage(t)}

	if _, err := service.ListTrails(context.Background(), "all"); err != nil {
		t.Fatalf("ListTrails: %v", err)
	}
	if repo.lastList != "" {
		t.Fatalf("expected empty filter, got %q", repo.lastList)
	}
}

func TestLocalImageStoragePathRejectsTraversal(t *testing.T) {
	storage := newTestStorage(t)

	for _, name := range []string{"", "..", "../secret.png", "a/b.png", `a\b.png`} {
		if _, err := storage.Path(name); !errors.Is(err, ErrInvalidImageName) {
			t.Fatalf("%q: expected ErrInvalidImageName, got %v", name, err)
		}
	}
	if path, err := storage.Path("trail-1.png"); err != nil || filepath.Dir(path) != storage.Dir() {
		t.Fatalf("unexpected path %q (%v)", path, err)
	}
}

func TestLocalImageStorageDeleteMissingIsNoop(t *testing.T) {
	storage := newTestStorage(t)

	if err := storage.DeleteImage(context.Background(), "gone.png"); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
}
