package announcements

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	announcementstore "github.com/dalemusser/hsms/internal/app/store/announcements"
	"github.com/dalemusser/hsms/internal/app/system/activewindow"
	"github.com/dalemusser/hsms/internal/app/system/auditlog"
	"github.com/dalemusser/hsms/internal/app/system/authz"
	"github.com/dalemusser/hsms/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hsms/internal/app/system/metrics"
	"github.com/dalemusser/hsms/internal/app/system/optional"
	"github.com/dalemusser/hsms/internal/app/system/timeouts"
	"github.com/dalemusser/hsms/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TimestampLayout is used for created_at and updated_at.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Operation names used in metrics and logs.
const (
	OpListActive = "list_active"
	OpListAll    = "list_all"
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
)

// AnnouncementStore is the persistence the service needs.
// *announcementstore.Store implements it.
type AnnouncementStore interface {
	List(ctx context.Context) ([]models.Announcement, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Announcement, error)
	Create(ctx context.Context, a models.Announcement) (models.Announcement, error)
	Update(ctx context.Context, id primitive.ObjectID, in announcementstore.UpdateInput) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Authorizer turns a username into a Principal. *authz.Authorizer
// implements it.
type Authorizer interface {
	Authorize(ctx context.Context, username string) (authz.Principal, error)
}

// Record is the outbound form of an announcement.
type Record struct {
	ID             string  `json:"_id"`
	Message        string  `json:"message"`
	StartDate      *string `json:"start_date"`
	ExpirationDate string  `json:"expiration_date"`
	CreatedBy      string  `json:"created_by"`
	CreatedAt      string  `json:"created_at"`
	UpdatedBy      string  `json:"updated_by,omitempty"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

func toRecord(a models.Announcement) Record {
	rec := Record{
		ID:             a.ID.Hex(),
		Message:        a.Message,
		ExpirationDate: a.ExpirationDate,
		CreatedBy:      a.CreatedBy,
		CreatedAt:      a.CreatedAt,
		UpdatedBy:      a.UpdatedBy,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.HasStartDate() {
		rec.StartDate = a.StartDate
	}
	return rec
}

func toRecords(list []models.Announcement) []Record {
	out := make([]Record, 0, len(list))
	for _, a := range list {
		out = append(out, toRecord(a))
	}
	return out
}

// CreateInput is the body of POST /announcements.
type CreateInput struct {
	Message        string  `json:"message" validate:"required"`
	StartDate      *string `json:"start_date"`
	ExpirationDate string  `json:"expiration_date" validate:"required"`
}

// UpdateInput is the body of PUT /announcements/{id}. Absent keys leave the
// stored field alone; null clears start_date and is rejected for the others.
type UpdateInput struct {
	Message        optional.Field[string] `json:"message"`
	StartDate      optional.Field[string] `json:"start_date"`
	ExpirationDate optional.Field[string] `json:"expiration_date"`
}

// Service implements the announcement operations.
type Service struct {
	Store  AnnouncementStore
	Auth   Authorizer
	Audit  *auditlog.Logger
	Window activewindow.Window
	Log    *zap.Logger

	// SanitizeMessages runs messages through the UGC HTML policy.
	SanitizeMessages bool

	// Now is the clock; tests replace it.
	Now func() time.Time

	validate *validator.Validate
}

// NewService constructs a Service with the real clock.
func NewService(store AnnouncementStore, auth Authorizer, audit *auditlog.Logger, window activewindow.Window, logger *zap.Logger) *Service {
	return &Service{
		Store:    store,
		Auth:     auth,
		Audit:    audit,
		Window:   window,
		Log:      logger,
		Now:      time.Now,
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names so clients see "expiration_date", not "ExpirationDate".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}

func (s *Service) stamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, authz.ErrUnauthorized):
		return metrics.OutcomeUnauthorized
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

func observe(op string, start time.Time, err *error) {
	metrics.ObserveOperation(op, outcome(*err), time.Since(start))
}

// Authorize checks username for op and records denials. Every protected
// operation calls it before any announcement store access.
func (s *Service) Authorize(ctx context.Context, username, op string) (authz.Principal, error) {
	g := authz.Guard{Auth: s.Auth, Log: s.Log}
	if s.Audit != nil {
		g.Denials = s.Audit
	}
	return g.Check(ctx, username, op)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, announcementstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ListActive returns the announcements whose window contains the current
// instant, in store order. It needs no authorization.
func (s *Service) ListActive(ctx context.Context) (out []Record, err error) {
	defer observe(OpListActive, time.Now(), &err)

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.Log, "list announcements")
	defer cancel()

	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out = make([]Record, 0, len(all))
	for _, a := range all {
		if s.Window.IsActive(now, a.StartDateValue(), a.ExpirationDate) {
			out = append(out, toRecord(a))
		}
	}
	metrics.SetActiveAnnouncements(len(out))
	return out, nil
}

// ListAll returns every announcement, unfiltered.
func (s *Service) ListAll(ctx context.Context, username string) (out []Record, err error) {
	defer observe(OpListAll, time.Now(), &err)

	if _, err = s.Authorize(ctx, username, OpListAll); err != nil {
		return nil, err
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.Log, "list all announcements")
	defer cancel()

	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return toRecords(all), nil
}

// Create validates and stores a new announcement stamped with the
// caller's username and the current time.
func (s *Service) Create(ctx context.Context, username string, in CreateInput) (rec Record, err error) {
	defer observe(OpCreate, time.Now(), &err)

	p, err := s.Authorize(ctx, username, OpCreate)
	if err != nil {
		return Record{}, err
	}

	if s.SanitizeMessages {
		in.Message = htmlsanitize.Sanitize(in.Message)
	}
	// Whitespace-only values count as missing.
	check := in
	check.Message = strings.TrimSpace(check.Message)
	check.ExpirationDate = strings.TrimSpace(check.ExpirationDate)
	if err = s.validator().Struct(check); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Record{}, fromValidator(verrs)
		}
		return Record{}, err
	}

	a := models.Announcement{
		Message:        in.Message,
		StartDate:      normalizeStart(in.StartDate),
		ExpirationDate: in.ExpirationDate,
		CreatedBy:      p.Username(),
		CreatedAt:      s.stamp(),
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.Log, "create announcement")
	defer cancel()

	created, err := s.Store.Create(ctx, a)
	if err != nil {
		return Record{}, err
	}

	s.Audit.AnnouncementCreated(ctx, p.Username(), created.ID.Hex())
	return toRecord(created), nil
}

// normalizeStart treats an empty start_date as no start bound.
func normalizeStart(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := *p
	return &v
}

func (s *Service) validator() *validator.Validate {
	if s.validate == nil {
		s.validate = newValidator()
	}
	return s.validate
}

// buildUpdate converts the tri-state body into a store update and the list
// of touched field names.
func (s *Service) buildUpdate(in UpdateInput) (announcementstore.UpdateInput, []string, error) {
	var out announcementstore.UpdateInput
	var changed, cleared []string

	switch in.Message.State() {
	case optional.Null:
		cleared = append(cleared, "message")
	case optional.Present:
		msg, _ := in.Message.Value()
		if s.SanitizeMessages {
			msg = htmlsanitize.Sanitize(msg)
		}
		if strings.TrimSpace(msg) == "" {
			cleared = append(cleared, "message")
		} else {
			out.Message = &msg
			changed = append(changed, "message")
		}
	}

	switch in.StartDate.State() {
	case optional.Null:
		out.ClearStartDate = true
		changed = append(changed, "start_date")
	case optional.Present:
		if start, _ := in.StartDate.Value(); strings.TrimSpace(start) == "" {
			out.ClearStartDate = true
		} else {
			out.StartDate = &start
		}
		changed = append(changed, "start_date")
	}

	switch in.ExpirationDate.State() {
	case optional.Null:
		cleared = append(cleared, "expiration_date")
	case optional.Present:
		exp, _ := in.ExpirationDate.Value()
		if strings.TrimSpace(exp) == "" {
			cleared = append(cleared, "expiration_date")
		} else {
			out.ExpirationDate = &exp
			changed = append(changed, "expiration_date")
		}
	}

	if len(cleared) > 0 {
		return out, nil, requiredFieldCleared(cleared...)
	}
	if !out.HasChanges() {
		return out, nil, ErrNoFields
	}
	return out, changed, nil
}

// Update applies the supplied fields and returns the stored record.
func (s *Service) Update(ctx context.Context, username, id string, in UpdateInput) (rec Record, err error) {
	defer observe(OpUpdate, time.Now(), &err)

	p, err := s.Authorize(ctx, username, OpUpdate)
	if err != nil {
		return Record{}, err
	}
	oid, err := parseID(id)
	if err != nil {
		return Record{}, err
	}
	upd, changed, err := s.buildUpdate(in)
	if err != nil {
		return Record{}, err
	}
	upd.UpdatedBy = p.Username()
	upd.UpdatedAt = s.stamp()

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.Log, "update announcement")
	defer cancel()

	if err = s.Store.Update(ctx, oid, upd); err != nil {
		return Record{}, mapStoreErr(err)
	}

	updated, err := s.Store.GetByID(ctx, oid)
	if err != nil {
		return Record{}, mapStoreErr(err)
	}

	s.Audit.AnnouncementUpdated(ctx, p.Username(), oid.Hex(), changed)
	return toRecord(updated), nil
}

// Delete removes an announcement.
func (s *Service) Delete(ctx context.Context, username, id string) (err error) {
	defer observe(OpDelete, time.Now(), &err)

	p, err := s.Authorize(ctx, username, OpDelete)
	if err != nil {
		return err
	}
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.Log, "delete announcement")
	defer cancel()

	if err = s.Store.Delete(ctx, oid); err != nil {
		return mapStoreErr(err)
	}

	s.Audit.AnnouncementDeleted(ctx, p.Username(), oid.Hex())
	s.logger().Info("announcement deleted", zap.String("id", oid.Hex()), zap.String("by", p.Username()))
	return nil
}
