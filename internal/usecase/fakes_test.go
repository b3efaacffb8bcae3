package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// store backs every fake repository with shared maps, the way one database
// would back the real ones.
type store struct {
	mu           sync.Mutex
	customers    map[uuid.UUID]*entity.Customer
	vehicles     map[uuid.UUID]*entity.Vehicle
	reservations map[uuid.UUID]*entity.Reservation
	payments     map[uuid.UUID]*entity.Payment
}

func newStore() *store {
	return &store{
		customers:    map[uuid.UUID]*entity.Customer{},
		vehicles:     map[uuid.UUID]*entity.Vehicle{},
		reservations: map[uuid.UUID]*entity.Reservation{},
		payments:     map[uuid.UUID]*entity.Payment{},
	}
}

func (s *store) repository() *repository.Repository {
	return &repository.Repository{
		Customer:    fakeCustomers{s},
		Vehicle:     fakeVehicles{s},
		Reservation: fakeReservations{s},
		Payment:     fakePayments{s},
	}
}

func (s *store) addCustomer() *entity.Customer {
	license := "DL-0001"
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	c := &entity.Customer{
		Base:          entity.Base{ID: uuid.New()},
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		LicenseNumber: &license,
		DateOfBirth:   &dob,
		IsActive:      true,
	}
	s.customers[c.ID] = c
	return c
}

func (s *store) addVehicle(baseRate int64) *entity.Vehicle {
	v := &entity.Vehicle{
		Base:         entity.Base{ID: uuid.New()},
		Brand:        "Toyota",
		Model:        "Corolla",
		LicensePlate: "AB-123-CD",
		Mileage:      1000,
		Status:       entity.VehicleStatusAvailable,
		TypeName:     "Sedan",
		TypeBaseRate: decimal.NewFromInt(baseRate),
	}
	s.vehicles[v.ID] = v
	return v
}

func (s *store) reservation(id uuid.UUID) *entity.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations[id]
}

func (s *store) detail(r *entity.Reservation) *entity.ReservationDetail {
	d := &entity.ReservationDetail{Reservation: *r}
	if c := s.customers[r.CustomerID]; c != nil {
		d.CustomerName = c.FullName()
		d.CustomerEmail = c.Email
	}
	if v := s.vehicles[r.VehicleID]; v != nil {
		d.VehicleBrand = v.Brand
		d.VehicleModel = v.Model
		d.LicensePlate = v.LicensePlate
	}
	return d
}

type fakeCustomers struct{ *store }

func (f fakeCustomers) FindByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customers[id], nil
}

type fakeVehicles struct{ *store }

func (f fakeVehicles) FindByID(_ context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (f fakeVehicles) UpdateStatus(_ context.Context, id uuid.UUID, status entity.VehicleStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return errs.NotFound("vehicle", id)
	}
	v.Status = status
	return nil
}

func (f fakeVehicles) UpdateMileage(_ context.Context, id uuid.UUID, mileage int, status entity.VehicleStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return errs.NotFound("vehicle", id)
	}
	v.Mileage = mileage
	v.Status = status
	return nil
}

type fakeReservations struct{ *store }

func (f fakeReservations) Create(_ context.Context, r *entity.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.reservations[r.ID] = &cp
	return nil
}

func (f fakeReservations) Update(_ context.Context, r *entity.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reservations[r.ID]; !ok {
		return errs.NotFound("reservation", r.ID)
	}
	cp := *r
	f.reservations[r.ID] = &cp
	return nil
}

func (f fakeReservations) FindByID(_ context.Context, id uuid.UUID) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f fakeReservations) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	return f.FindByID(ctx, id)
}

func (f fakeReservations) FindDetailByID(_ context.Context, id uuid.UUID) (*entity.ReservationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, nil
	}
	return f.detail(r), nil
}

func (f fakeReservations) FindActiveByVehicle(_ context.Context, vehicleID uuid.UUID) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Reservation
	for _, r := range f.reservations {
		if r.VehicleID == vehicleID && r.BlocksVehicle() {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f fakeReservations) matching(keep func(*entity.Reservation) bool) []*entity.ReservationDetail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.ReservationDetail
	for _, r := range f.reservations {
		if keep(r) {
			out = append(out, f.detail(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func paginate(details []*entity.ReservationDetail, limit, offset int) []*entity.ReservationDetail {
	if offset >= len(details) {
		return nil
	}
	end := offset + limit
	if end > len(details) {
		end = len(details)
	}
	return details[offset:end]
}

func (f fakeReservations) FindByCustomer(_ context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.ReservationDetail, error) {
	all := f.matching(func(r *entity.Reservation) bool { return r.CustomerID == customerID })
	return paginate(all, limit, offset), nil
}

func (f fakeReservations) CountByCustomer(_ context.Context, customerID uuid.UUID) (int64, error) {
	return int64(len(f.matching(func(r *entity.Reservation) bool { return r.CustomerID == customerID }))), nil
}

func (f fakeReservations) List(_ context.Context, status *entity.ReservationStatus, limit, offset int) ([]*entity.ReservationDetail, error) {
	all := f.matching(func(r *entity.Reservation) bool { return status == nil || r.Status == *status })
	return paginate(all, limit, offset), nil
}

func (f fakeReservations) Count(_ context.Context, status *entity.ReservationStatus) (int64, error) {
	return int64(len(f.matching(func(r *entity.Reservation) bool { return status == nil || r.Status == *status }))), nil
}

// Search honours the term and status filters only; SQL generation is
// covered by the repository tests.
func (f fakeReservations) Search(_ context.Context, filter repository.ReservationFilter) ([]*entity.ReservationDetail, int64, error) {
	term := strings.ToLower(filter.Term)
	all := f.matching(func(r *entity.Reservation) bool {
		if filter.Status != nil && r.Status != *filter.Status {
			return false
		}
		if term == "" {
			return true
		}
		d := f.detail(r)
		return strings.Contains(strings.ToLower(d.CustomerName+" "+d.VehicleBrand+" "+d.VehicleModel+" "+d.LicensePlate), term)
	})
	return paginate(all, filter.Limit, filter.Offset), int64(len(all)), nil
}

type fakePayments struct{ *store }

func (f fakePayments) Create(_ context.Context, p *entity.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f fakePayments) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments[id], nil
}

func (f fakePayments) FindByReservationID(_ context.Context, reservationID uuid.UUID) ([]*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Payment
	for _, p := range f.payments {
		if p.ReservationID == reservationID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeTransactor runs fn against the same repositories without isolation.
type fakeTransactor struct {
	repo  *repository.Repository
	calls int
	fail  []error
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *repository.Repository) error) error {
	t.calls++
	if len(t.fail) > 0 {
		err := t.fail[0]
		t.fail = t.fail[1:]
		return err
	}
	return fn(ctx, t.repo)
}

type recordingNotifier struct {
	confirmed []uuid.UUID
	cancelled []uuid.UUID
	payments  []uuid.UUID
}

func (n *recordingNotifier) NotifyReservationConfirmed(id uuid.UUID) {
	n.confirmed = append(n.confirmed, id)
}

func (n *recordingNotifier) NotifyReservationCancelled(id uuid.UUID) {
	n.cancelled = append(n.cancelled, id)
}

func (n *recordingNotifier) NotifyPaymentReceived(id uuid.UUID) {
	n.payments = append(n.payments, id)
}

type fakeLocker struct {
	err      error
	locked   int
	unlocked int
}

func (l *fakeLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked++
	return func() { l.unlocked++ }, nil
}

type fakeQR struct {
	content string
	err     error
}

func (q *fakeQR) Encode(content string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.content = content
	return "cXItY29kZQ==", nil
}

var fixedNow = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store    *store
	tx       *fakeTransactor
	notifier *recordingNotifier
	locker   *fakeLocker
	qr       *fakeQR
	svc      *Service
}

func newFixture() *fixture {
	st := newStore()
	repo := st.repository()
	f := &fixture{
		store:    st,
		tx:       &fakeTransactor{repo: repo},
		notifier: &recordingNotifier{},
		locker:   &fakeLocker{},
		qr:       &fakeQR{},
	}
	f.svc = NewService(Dependencies{
		Repo:       repo,
		Transactor: f.tx,
		Notifier:   f.notifier,
		Locker:     f.locker,
		QR:         f.qr,
		Now:        func() time.Time { return fixedNow },
	}, zap.NewNop())
	return f
}

// seedReservation stores a reservation in the given status directly.
func (f *fixture) seedReservation(customer *entity.Customer, vehicle *entity.Vehicle, start, end string, status entity.ReservationStatus) *entity.Reservation {
	startDate, _ := time.Parse(time.DateOnly, start)
	endDate, _ := time.Parse(time.DateOnly, end)
	r, err := entity.NewReservation(customer.ID, vehicle.ID, startDate, endDate, vehicle.EffectiveDailyRate(), nil, fixedNow)
	if err != nil {
		panic(err)
	}
	r.Status = status
	f.store.reservations[r.ID] = r
	return r
}
