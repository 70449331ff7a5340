package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"carmarket_backend/internal/events"
	"carmarket_backend/internal/listings/query"
	"carmarket_backend/internal/listings/repository"
	"carmarket_backend/internal/listings/transport"
	"carmarket_backend/platform/apperr"
	"carmarket_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	searchSpec  *query.SQL
	searchCars  []repository.Car
	searchTotal int64
	searchErr   error

	created *repository.CreateCarParams
	car     repository.Car
	getErr  error

	adminResult repository.AdminListResult
	adminParams *repository.AdminListParams

	deletedID     *uuid.UUID
	deletedSeller *uuid.UUID
}

func (f *fakeRepo) Search(ctx context.Context, spec query.SQL) ([]repository.Car, int64, error) {
	f.searchSpec = &spec
	return f.searchCars, f.searchTotal, f.searchErr
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Car, error) {
	if f.getErr != nil {
		return repository.Car{}, f.getErr
	}
	return f.car, nil
}

func (f *fakeRepo) Create(ctx context.Context, params repository.CreateCarParams) (repository.Car, error) {
	f.created = &params
	car := f.car
	car.Make = params.Make
	car.Model = params.Model
	return car, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID, sellerID *uuid.UUID) error {
	f.deletedID = &id
	f.deletedSeller = sellerID
	return nil
}

func (f *fakeRepo) AdminList(ctx context.Context, params repository.AdminListParams) (repository.AdminListResult, error) {
	f.adminParams = &params
	return f.adminResult, nil
}

func newTestService(repo *fakeRepo) (*Service, *events.InMemoryBus) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	return New(repo, nil, "car-images", bus, log), bus
}

func sampleCar() repository.Car {
	return repository.Car{
		ID:           uuid.New(),
		SellerID:     uuid.New(),
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2019,
		Price:        15000,
		Mileage:      42000,
		FuelType:     "gasoline",
		Transmission: "manual",
		CarClass:     "sedan",
		Description:  "well kept",
		Images:       []string{"a.jpg", "b.jpg"},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestSearchRejectsInvalidParamsBeforeStore(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo)

	_, err := svc.Search(context.Background(), query.Params{MinYear: "2020", MaxYear: "2010"})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.searchSpec != nil {
		t.Fatal("store must not be queried on validation failure")
	}

	appErr := err.(*apperr.Error)
	if appErr.Message != "Invalid parameters" {
		t.Fatalf("message = %q, want Invalid parameters", appErr.Message)
	}
	if appErr.Details == nil {
		t.Fatal("expected itemized details")
	}
}

func TestSearchShapesEnvelope(t *testing.T) {
	car := sampleCar()
	repo := &fakeRepo{searchCars: []repository.Car{car}, searchTotal: 21}
	svc, _ := newTestService(repo)

	result, err := svc.Search(context.Background(), query.Params{Limit: "10", Page: "2", Text: "Toyota"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Total != 21 || result.Page != 2 || result.Limit != 10 {
		t.Fatalf("envelope = %+v", result)
	}
	if result.TotalPages != 3 {
		t.Fatalf("totalPages = %d, want 3", result.TotalPages)
	}
	if result.Filters["q"] != "Toyota" {
		t.Fatalf("filters = %v", result.Filters)
	}
	if len(result.Cars) != 1 {
		t.Fatalf("cars = %d, want 1", len(result.Cars))
	}
	// Summaries carry the first image only.
	if result.Cars[0].Image != "a.jpg" {
		t.Fatalf("summary image = %q, want a.jpg", result.Cars[0].Image)
	}
}

func TestSearchPageBeyondRangeKeepsTotals(t *testing.T) {
	repo := &fakeRepo{searchCars: []repository.Car{}, searchTotal: 5}
	svc, _ := newTestService(repo)

	result, err := svc.Search(context.Background(), query.Params{Page: "99"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Cars) != 0 {
		t.Fatal("expected empty page")
	}
	if result.Total != 5 || result.TotalPages != 1 {
		t.Fatalf("totals = %d/%d, want 5/1", result.Total, result.TotalPages)
	}
}

func TestSearchStoreFailureIsGeneric(t *testing.T) {
	repo := &fakeRepo{searchErr: context.DeadlineExceeded}
	svc, _ := newTestService(repo)

	_, err := svc.Search(context.Background(), query.Params{})
	if apperr.GetKind(err) != apperr.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err.(*apperr.Error).Message != "Error searching cars" {
		t.Fatalf("message = %q", err.(*apperr.Error).Message)
	}
}

func TestCreateCarNormalizesCategories(t *testing.T) {
	repo := &fakeRepo{car: sampleCar()}
	svc, _ := newTestService(repo)
	sellerID := uuid.New()

	_, err := svc.CreateCar(context.Background(), sellerID, transport.CreateCarRequest{
		Make: "Toyota", Model: "Corolla", Year: 2019, Price: 15000,
		FuelType: " Diesel ", Transmission: "AUTOMATIC", CarClass: "suv",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created.FuelType != "diesel" || repo.created.Transmission != "automatic" {
		t.Fatalf("categories not normalized: %+v", repo.created)
	}
	if repo.created.SellerID != sellerID {
		t.Fatal("seller not propagated")
	}
}

func TestCreateCarRejectsUnknownCategory(t *testing.T) {
	repo := &fakeRepo{car: sampleCar()}
	svc, _ := newTestService(repo)

	_, err := svc.CreateCar(context.Background(), uuid.New(), transport.CreateCarRequest{
		Make: "Toyota", Model: "Corolla", Year: 2019, Price: 15000,
		FuelType: "plutonium", Transmission: "manual", CarClass: "sedan",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("store must not be written for invalid input")
	}
}

func TestDeleteCarScopedToSeller(t *testing.T) {
	car := sampleCar()
	repo := &fakeRepo{car: car}
	svc, _ := newTestService(repo)
	sellerID := car.SellerID

	if err := svc.DeleteCar(context.Background(), sellerID, car.ID.String()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deletedSeller == nil || *repo.deletedSeller != sellerID {
		t.Fatal("seller scope not applied")
	}
}

func TestAdminDeleteSkipsOwnershipScope(t *testing.T) {
	car := sampleCar()
	repo := &fakeRepo{car: car}
	svc, _ := newTestService(repo)

	if err := svc.AdminDeleteCar(context.Background(), uuid.New(), car.ID.String()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deletedSeller != nil {
		t.Fatal("admin delete must not be seller scoped")
	}
}

func TestAdminListEnvelope(t *testing.T) {
	repo := &fakeRepo{adminResult: repository.AdminListResult{
		Cars:           []repository.Car{sampleCar()},
		TotalPosts:     42,
		LastMonthPosts: 7,
	}}
	svc, _ := newTestService(repo)

	result, err := svc.AdminList(context.Background(), transport.AdminListRequest{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success flag")
	}
	if result.TotalPosts != 42 || result.LastMonthPosts != 7 {
		t.Fatalf("counters = %d/%d", result.TotalPosts, result.LastMonthPosts)
	}
	if result.Pagination.Page != 2 || result.Pagination.Pages != 5 {
		t.Fatalf("pagination = %+v", result.Pagination)
	}
	if repo.adminParams.Offset != 10 {
		t.Fatalf("offset = %d, want 10", repo.adminParams.Offset)
	}
}

func TestAdminListClampsPageAndLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo)

	if _, err := svc.AdminList(context.Background(), transport.AdminListRequest{Page: -3, Limit: 9999}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.adminParams.Page != 1 || repo.adminParams.Limit != 100 {
		t.Fatalf("params = %+v", repo.adminParams)
	}
}
