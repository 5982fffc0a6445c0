package services

import (
	"context"
	"testing"

	"github.com/prithwish249/qr-attendence/internal/models"
	"github.com/prithwish249/qr-attendence/internal/utils"
)

func attendanceFixture(t *testing.T) (*AttendanceService, *fakeSessionStore, *fakeAttendanceStore) {
	t.Helper()
	users := newFakeUserStore(
		models.User{ID: 1, Username: "admin1", Role: models.RoleAdmin},
		models.User{ID: 2, Username: "emp1", Role: models.RoleEmployee},
		models.User{ID: 3, Username: "emp2", Role: models.RoleEmployee},
	)
	sessions := newFakeSessionStore()
	attendance := newFakeAttendanceStore()
	return NewAttendanceService(sessions, users, attendance), sessions, attendance
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := err.(*utils.AppError)
	if !ok {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

func TestSubmitNoSession(t *testing.T) {
	svc, _, _ := attendanceFixture(t)
	_, err := svc.Submit(context.Background(), "emp1", "whatever")
	expectCode(t, err, "NO_SESSION")
}

func TestSubmitInvalidToken(t *testing.T) {
	svc, sessions, _ := attendanceFixture(t)
	ctx := context.Background()
	if _, err := sessions.Create(ctx, models.Today(), "abc123"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Submit(ctx, "emp1", "wrong-token")
	expectCode(t, err, "INVALID_TOKEN")
}

func TestSubmitUnknownUser(t *testing.T) {
	svc, sessions, _ := attendanceFixture(t)
	ctx := context.Background()
	if _, err := sessions.Create(ctx, models.Today(), "abc123"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Submit(ctx, "ghost", "abc123")
	expectCode(t, err, "NOT_FOUND")
}

func TestSubmitMarksThenDuplicates(t *testing.T) {
	svc, sessions, _ := attendanceFixture(t)
	ctx := context.Background()
	if _, err := sessions.Create(ctx, models.Today(), "abc123"); err != nil {
		t.Fatal(err)
	}

	first, err := svc.Submit(ctx, "emp1", "abc123")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.Status != SubmitMarked {
		t.Fatalf("expected MARKED, got %s", first.Status)
	}
	if first.Message != "Attendance marked successfully" {
		t.Fatalf("unexpected message %q", first.Message)
	}
	if first.Time == "" {
		t.Fatal("expected a check-in time")
	}

	second, err := svc.Submit(ctx, "emp1", "abc123")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.Status != SubmitDuplicate {
		t.Fatalf("expected DUPLICATE, got %s", second.Status)
	}
	if second.Message != "Attendance already marked for today" {
		t.Fatalf("unexpected message %q", second.Message)
	}
}

func TestTodayReportDerivesAbsent(t *testing.T) {
	svc, sessions, _ := attendanceFixture(t)
	ctx := context.Background()
	if _, err := sessions.Create(ctx, models.Today(), "abc123"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(ctx, "emp1", "abc123"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	records, err := svc.TodayReport(ctx)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	// Admins are not on the roster.
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	byName := map[string]models.AttendanceRecord{}
	for _, record := range records {
		byName[record.Username] = record
	}

	present := byName["emp1"]
	if present.Status != models.StatusPresent {
		t.Fatalf("emp1 should be PRESENT, got %s", present.Status)
	}
	if present.CheckInTime == nil || *present.CheckInTime == "" {
		t.Fatal("emp1 should have a check-in time")
	}

	absent := byName["emp2"]
	if absent.Status != models.StatusAbsent {
		t.Fatalf("emp2 should be ABSENT, got %s", absent.Status)
	}
	if absent.CheckInTime != nil {
		t.Fatal("emp2 should have no check-in time")
	}
}

func TestHistoryByUserUnknownUser(t *testing.T) {
	svc, _, _ := attendanceFixture(t)
	_, err := svc.HistoryByUser(context.Background(), 99)
	expectCode(t, err, "NOT_FOUND")
}
