package announcements_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/hsms/internal/app/features/announcements"
	"github.com/dalemusser/hsms/internal/app/system/activewindow"
	"github.com/dalemusser/hsms/internal/app/system/authz"
	"github.com/dalemusser/hsms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*announcements.Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := announcements.NewService(store, newAuthorizer("alice"), nil, activewindow.New(time.UTC), zap.NewNop())
	svc.Now = func() time.Time { return fixedNow }
	return svc, store
}

func decodeUpdate(t *testing.T, body string) announcements.UpdateInput {
	t.Helper()
	var in announcements.UpdateInput
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("decode update body: %v", err)
	}
	return in
}

func TestListActive_FiltersByWindow(t *testing.T) {
	svc, store := newTestService(t)

	open := store.seed(models.Announcement{Message: "open", ExpirationDate: "2030-01-01"})
	store.seed(models.Announcement{Message: "expired", ExpirationDate: "2020-01-01"})
	store.seed(models.Announcement{Message: "future", StartDate: strPtr("2030-01-01"), ExpirationDate: "2031-01-01"})
	started := store.seed(models.Announcement{Message: "started", StartDate: strPtr("2024-04-01T00:00:00"), ExpirationDate: "2024-06-01T00:00:00"})

	recs, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}
	if recs[0].ID != open.ID.Hex() || recs[1].ID != started.ID.Hex() {
		t.Errorf("unexpected records or order: %+v", recs)
	}
}

func TestListActive_ExpirationInstantStillActive(t *testing.T) {
	svc, store := newTestService(t)
	store.seed(models.Announcement{Message: "edge", ExpirationDate: "2024-05-01T12:00:00Z"})

	recs, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("announcement at its exact expiration instant should be listed, got %d", len(recs))
	}
}

func TestListActive_EmptyStore(t *testing.T) {
	svc, _ := newTestService(t)
	recs, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", recs)
	}
}

func TestListActive_StoreFailure(t *testing.T) {
	svc, store := newTestService(t)
	store.err = errors.New("connection refused")

	if _, err := svc.ListActive(context.Background()); err == nil {
		t.Fatal("expected store error")
	}
}

func TestListAll_ReturnsExpiredToo(t *testing.T) {
	svc, store := newTestService(t)
	store.seed(models.Announcement{Message: "open", ExpirationDate: "2030-01-01"})
	store.seed(models.Announcement{Message: "expired", ExpirationDate: "2020-01-01"})

	recs, err := svc.ListAll(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d records, want 2", len(recs))
	}
}

func TestListAll_EmptyStoredStartDateIsNull(t *testing.T) {
	svc, store := newTestService(t)
	store.seed(models.Announcement{Message: "legacy", StartDate: strPtr(""), ExpirationDate: "2030-01-01"})
	store.seed(models.Announcement{Message: "bounded", StartDate: strPtr("2024-01-01"), ExpirationDate: "2030-01-01"})

	recs, err := svc.ListAll(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].StartDate != nil {
		t.Errorf("empty stored start_date should be reported as null, got %q", *recs[0].StartDate)
	}
	if recs[1].StartDate == nil || *recs[1].StartDate != "2024-01-01" {
		t.Errorf("StartDate = %v, want 2024-01-01", recs[1].StartDate)
	}
}

func TestProtectedOperations_UnauthorizedBeforeStore(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	upd := decodeUpdate(t, `{"message":"x"}`)
	ops := map[string]func(*announcements.Service) error{
		"list all": func(s *announcements.Service) error {
			_, err := s.ListAll(context.Background(), "mallory")
			return err
		},
		"create": func(s *announcements.Service) error {
			_, err := s.Create(context.Background(), "mallory", announcements.CreateInput{Message: "x", ExpirationDate: "2030-01-01"})
			return err
		},
		"update": func(s *announcements.Service) error {
			_, err := s.Update(context.Background(), "mallory", id, upd)
			return err
		},
		"update with malformed id": func(s *announcements.Service) error {
			_, err := s.Update(context.Background(), "", "not-an-id", announcements.UpdateInput{})
			return err
		},
		"delete": func(s *announcements.Service) error {
			return s.Delete(context.Background(), "", id)
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			svc, store := newTestService(t)
			err := op(svc)
			if !errors.Is(err, authz.ErrUnauthorized) {
				t.Fatalf("err = %v, want ErrUnauthorized", err)
			}
			if store.calls != 0 {
				t.Errorf("store was called %d times before authorization", store.calls)
			}
		})
	}
}

func TestCreate_ThenListAll(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.Create(context.Background(), "alice", announcements.CreateInput{
		Message:        "Exam Friday",
		ExpirationDate: "2099-01-01T00:00:00",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := primitive.ObjectIDFromHex(rec.ID); err != nil {
		t.Errorf("ID %q is not a hex ObjectID", rec.ID)
	}
	if rec.CreatedBy != "alice" {
		t.Errorf("CreatedBy = %q", rec.CreatedBy)
	}
	if rec.CreatedAt != "2024-05-01T12:00:00.000000Z" {
		t.Errorf("CreatedAt = %q", rec.CreatedAt)
	}
	if rec.StartDate != nil {
		t.Errorf("StartDate = %v, want nil", *rec.StartDate)
	}

	all, err := svc.ListAll(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != rec.ID {
		t.Errorf("ListAll = %+v, want the created record", all)
	}
}

func TestCreate_MissingRequiredFields(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Create(context.Background(), "alice", announcements.CreateInput{Message: "no expiry"})
	if !errors.Is(err, announcements.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	var ve *announcements.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err %T is not a ValidationError", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "expiration_date" || ve.Fields[0].Tag != "required" {
		t.Errorf("Fields = %+v", ve.Fields)
	}
	if len(store.docs) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestCreate_SanitizesMessage(t *testing.T) {
	svc, _ := newTestService(t)
	svc.SanitizeMessages = true

	rec, err := svc.Create(context.Background(), "alice", announcements.CreateInput{
		Message:        `Exam <b>Friday</b><script>alert(1)</script>`,
		ExpirationDate: "2099-01-01",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.Message != "Exam <b>Friday</b>" {
		t.Errorf("Message = %q", rec.Message)
	}

	_, err = svc.Create(context.Background(), "alice", announcements.CreateInput{
		Message:        `<script>alert(1)</script>`,
		ExpirationDate: "2099-01-01",
	})
	if !errors.Is(err, announcements.ErrInvalidInput) {
		t.Errorf("message that sanitizes to nothing: err = %v, want ErrInvalidInput", err)
	}
}

func TestCreate_SanitizeKeepsPlainText(t *testing.T) {
	svc, store := newTestService(t)
	svc.SanitizeMessages = true

	for _, msg := range []string{
		"Q&A session Friday",
		"Grades < 60 must see counselor",
		`Tom & Jerry's "movie" night`,
	} {
		rec, err := svc.Create(context.Background(), "alice", announcements.CreateInput{
			Message:        msg,
			ExpirationDate: "2099-01-01",
		})
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", msg, err)
		}
		if rec.Message != msg {
			t.Errorf("returned message = %q, want %q", rec.Message, msg)
		}
		oid, _ := primitive.ObjectIDFromHex(rec.ID)
		if got := store.docs[oid].Message; got != msg {
			t.Errorf("stored message = %q, want %q", got, msg)
		}
	}
}

func TestUpdate_SanitizeKeepsPlainText(t *testing.T) {
	svc, store := newTestService(t)
	svc.SanitizeMessages = true
	a := store.seed(models.Announcement{Message: "old", ExpirationDate: "2030-01-01"})

	rec, err := svc.Update(context.Background(), "alice", a.ID.Hex(), decodeUpdate(t, `{"message":"x < 5 & y > 2"}`))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if rec.Message != "x < 5 & y > 2" {
		t.Errorf("Message = %q", rec.Message)
	}
}

func TestUpdate_EmptyBody(t *testing.T) {
	svc, store := newTestService(t)
	a := store.seed(models.Announcement{Message: "keep", ExpirationDate: "2030-01-01"})

	_, err := svc.Update(context.Background(), "alice", a.ID.Hex(), decodeUpdate(t, `{}`))
	if !errors.Is(err, announcements.ErrNoFields) {
		t.Fatalf("err = %v, want ErrNoFields", err)
	}
	if !errors.Is(err, announcements.ErrInvalidInput) {
		t.Error("ErrNoFields should be an input error")
	}
	if got := store.docs[a.ID]; got.Message != "keep" || got.UpdatedBy != "" {
		t.Errorf("record changed: %+v", got)
	}
}

func TestUpdate_MessageOnly(t *testing.T) {
	svc, store := newTestService(t)
	a := store.seed(models.Announcement{Message: "old", StartDate: strPtr("2024-01-01"), ExpirationDate: "2030-01-01", CreatedBy: "bob"})

	rec, err := svc.Update(context.Background(), "alice", a.ID.Hex(), decodeUpdate(t, `{"message":"new"}`))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if rec.Message != "new" {
		t.Errorf("Message = %q", rec.Message)
	}
	if rec.StartDate == nil || *rec.StartDate != "2024-01-01" {
		t.Errorf("StartDate changed: %v", rec.StartDate)
	}
	if rec.ExpirationDate != "2030-01-01" {
		t.Errorf("ExpirationDate changed: %q", rec.ExpirationDate)
	}
	if rec.CreatedBy != "bob" {
		t.Errorf("CreatedBy changed: %q", rec.CreatedBy)
	}
	if rec.UpdatedBy != "alice" || rec.UpdatedAt != "2024-05-01T12:00:00.000000Z" {
		t.Errorf("update stamps = %q/%q", rec.UpdatedBy, rec.UpdatedAt)
	}
}

func TestUpdate_NullStartDateClearsIt(t *testing.T) {
	svc, store := newTestService(t)
	a := store.seed(models.Announcement{Message: "m", StartDate: strPtr("2030-01-01"), ExpirationDate: "2031-01-01"})

	rec, err := svc.Update(context.Background(), "alice", a.ID.Hex(), decodeUpdate(t, `{"start_date":null}`))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if rec.StartDate != nil {
		t.Errorf("StartDate = %v, want nil", *rec.StartDate)
	}

	active, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("cleared start should make the announcement active, got %d", len(active))
	}
}

func TestUpdate_NullRequiredFieldRejected(t *testing.T) {
	svc, store := newTestService(t)
	a := store.seed(models.Announcement{Message: "m", ExpirationDate: "2030-01-01"})

	for _, body := range []string{`{"message":null}`, `{"expiration_date":null}`, `{"expiration_date":""}`} {
		_, err := svc.Update(context.Background(), "alice", a.ID.Hex(), decodeUpdate(t, body))
		if !errors.Is(err, announcements.ErrRequiredFieldCleared) {
			t.Errorf("%s: err = %v, want ErrRequiredFieldCleared", body, err)
		}
		if !errors.Is(err, announcements.ErrInvalidInput) {
			t.Errorf("%s: err should be an input error", body)
		}
	}
	if got := store.docs[a.ID]; got.ExpirationDate != "2030-01-01" || got.Message != "m" {
		t.Errorf("record changed: %+v", got)
	}
}

func TestUpdate_NotFoundAndInvalidID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "alice", primitive.NewObjectID().Hex(), decodeUpdate(t, `{"message":"x"}`))
	if !errors.Is(err, announcements.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	_, err = svc.Update(context.Background(), "alice", "xyz", decodeUpdate(t, `{"message":"x"}`))
	if !errors.Is(err, announcements.ErrInvalidID) {
		t.Errorf("err = %v, want ErrInvalidID", err)
	}
}

func TestDelete(t *testing.T) {
	svc, store := newTestService(t)
	a := store.seed(models.Announcement{Message: "bye", ExpirationDate: "2030-01-01"})

	if err := svc.Delete(context.Background(), "alice", primitive.NewObjectID().Hex()); !errors.Is(err, announcements.ErrNotFound) {
		t.Errorf("delete nonexistent: err = %v, want ErrNotFound", err)
	}
	if len(store.docs) != 1 {
		t.Error("delete of nonexistent id changed the store")
	}

	if err := svc.Delete(context.Background(), "alice", a.ID.Hex()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), "alice", a.ID.Hex()); !errors.Is(err, announcements.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(context.Background(), "alice", "123"); !errors.Is(err, announcements.ErrInvalidID) {
		t.Errorf("malformed id: err = %v, want ErrInvalidID", err)
	}
}

func TestScenario_ExamFriday(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "mallory", announcements.CreateInput{Message: "Exam Friday", ExpirationDate: "2099-01-01T00:00:00"}); !errors.Is(err, authz.ErrUnauthorized) {
		t.Fatalf("unknown user create: err = %v", err)
	}

	rec, err := svc.Create(ctx, "alice", announcements.CreateInput{Message: "Exam Friday", ExpirationDate: "2099-01-01T00:00:00"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 1 || active[0].Message != "Exam Friday" {
		t.Fatalf("public list = %+v", active)
	}

	if _, err := svc.Update(ctx, "alice", rec.ID, decodeUpdate(t, `{"expiration_date":"2024-04-30T00:00:00"}`)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	active, _ = svc.ListActive(ctx)
	if len(active) != 0 {
		t.Errorf("expired announcement still public: %+v", active)
	}
	all, _ := svc.ListAll(ctx, "alice")
	if len(all) != 1 {
		t.Errorf("ListAll = %d records, want 1", len(all))
	}

	if err := svc.Delete(ctx, "alice", rec.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	all, _ = svc.ListAll(ctx, "alice")
	if len(all) != 0 {
		t.Errorf("ListAll after delete = %+v", all)
	}
}
