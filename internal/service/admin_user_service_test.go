package service

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/testutil"
)

func TestListUsersDerivesTestStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.admin()
	orient := f.orientation()
	ctx := context.Background()

	idle := testutil.CreateUser(t, f.db, "idle@example.com", false)
	busy := testutil.CreateUser(t, f.db, "busy@example.com", false)
	done := testutil.CreateUser(t, f.db, "done@example.com", false)
	testutil.CreateUser(t, f.db, "staff@example.com", true)

	if _, err := orient.SaveStep(ctx, busy, dto.SaveStepRequest{
		StepName: "riasec",
		StepData: map[string]any{"riasec": map[string]any{"R": 1}},
	}); err != nil {
		t.Fatalf("SaveStep: %v", err)
	}
	completeAllSteps(t, orient, done, map[string]any{"S": 9, "R": 2})

	rows, page, err := svc.ListUsers(ctx, dto.NewListQuery("", "", ""))
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if page.Total != 3 || len(rows) != 3 {
		t.Fatalf("ListUsers returned %d rows, total %d; want 3", len(rows), page.Total)
	}

	byID := map[uint]dto.UserSummaryDTO{}
	for _, r := range rows {
		byID[r.ID] = r
	}

	if got := byID[idle.ID]; got.TestStatus != dto.StatusNotStarted || got.CurrentStep != nil || len(got.CompletedSteps) != 0 {
		t.Errorf("idle row = %+v", got)
	}
	got := byID[busy.ID]
	if got.TestStatus != dto.StatusInProgress || got.CurrentStep == nil || *got.CurrentStep != "riasec" {
		t.Errorf("busy row = %+v", got)
	}
	got = byID[done.ID]
	if got.TestStatus != dto.StatusFinished || !got.AllStepsCompleted {
		t.Errorf("done row = %+v", got)
	}
	if got.DominantProfile == nil || *got.DominantProfile != "S" {
		t.Errorf("dominant profile = %v, want S", got.DominantProfile)
	}
	if got.UserCode == "" || got.Email != "done@example.com" {
		t.Errorf("done row identity = %+v", got)
	}

	stored, err := f.users.FindByID(ctx, idle.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.UserCode == nil || *stored.UserCode != "ET-0001" {
		t.Errorf("user code not persisted: %v", stored.UserCode)
	}
}

func TestListUsersSearch(t *testing.T) {
	f := newFixture(t)
	testutil.CreateUser(t, f.db, "awa@example.com", false)
	testutil.CreateUser(t, f.db, "moussa@example.com", false)

	rows, page, err := f.admin().ListUsers(context.Background(), dto.NewListQuery("1", "10", "MOUSSA"))
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if page.Total != 1 || len(rows) != 1 || rows[0].Email != "moussa@example.com" {
		t.Errorf("search rows = %+v", rows)
	}
}

func TestCreateUserIssuesCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.admin().CreateUser(ctx, dto.CreateUserRequest{
		Email:     "awa@example.com",
		Password:  "secret",
		FirstName: strPtr("Awa"),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.QRCode == nil || !strings.HasPrefix(*created.QRCode, "EVENT_USER_") {
		t.Errorf("QRCode = %v", created.QRCode)
	}
	if created.UserCode != "ET-0001" || created.TestStatus != dto.StatusNotStarted {
		t.Errorf("created = %+v", created)
	}

	_, err = f.admin().CreateUser(ctx, dto.CreateUserRequest{Email: "awa@example.com", Password: "x"})
	wantKind(t, err, apperr.KindValidation)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()
	awa := testutil.CreateUser(t, f.db, "awa@example.com", false)
	testutil.CreateUser(t, f.db, "taken@example.com", false)

	_, err := svc.UpdateUser(ctx, awa.ID, dto.UpdateUserRequest{Email: strPtr("taken@example.com")})
	wantKind(t, err, apperr.KindValidation)

	_, err = svc.UpdateUser(ctx, 999, dto.UpdateUserRequest{})
	wantKind(t, err, apperr.KindNotFound)

	updated, err := svc.UpdateUser(ctx, awa.ID, dto.UpdateUserRequest{
		Email:    strPtr("awa@example.com"),
		LastName: strPtr("Diallo"),
		Password: strPtr("new-secret"),
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.LastName == nil || *updated.LastName != "Diallo" {
		t.Errorf("LastName = %v", updated.LastName)
	}
	stored, _ := f.users.FindByID(ctx, awa.ID)
	if stored.Password == "x" {
		t.Error("password not rehashed")
	}
}

func TestTestStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "awa@example.com", false)

	status, err := svc.TestStatus(ctx, user.ID)
	if err != nil || status != nil {
		t.Fatalf("TestStatus without test = %v, %v", status, err)
	}

	if _, err := f.orientation().SaveStep(ctx, user, dto.SaveStepRequest{
		StepName: "interests",
		StepData: map[string]any{"interests": []any{"math"}},
	}); err != nil {
		t.Fatalf("SaveStep: %v", err)
	}
	status, err = svc.TestStatus(ctx, user.ID)
	if err != nil {
		t.Fatalf("TestStatus: %v", err)
	}
	if !reflect.DeepEqual(status.CompletedSteps, []string{"interests"}) || status.AllStepsCompleted {
		t.Errorf("status = %+v", status)
	}
}

func TestReportRequiresAllSteps(t *testing.T) {
	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "awa@example.com", false)

	_, err := svc.Report(ctx, user.ID)
	wantKind(t, err, apperr.KindNotFound)

	if _, err := f.orientation().SaveStep(ctx, user, dto.SaveStepRequest{
		StepName: "riasec",
		StepData: map[string]any{"riasec": map[string]any{"R": 1}},
	}); err != nil {
		t.Fatalf("SaveStep: %v", err)
	}
	_, err = svc.Report(ctx, user.ID)
	wantKind(t, err, apperr.KindValidation)
	appErr := apperr.From(err)
	if !strings.HasSuffix(appErr.Message, "1/7") {
		t.Errorf("message = %q", appErr.Message)
	}
	if got := appErr.Fields["completedSteps"]; !reflect.DeepEqual(got, []string{"riasec"}) {
		t.Errorf("completedSteps = %v", got)
	}
	if got := appErr.Fields["requiredSteps"].([]string); len(got) != 7 {
		t.Errorf("requiredSteps = %v", got)
	}

	completeAllSteps(t, f.orientation(), user, map[string]any{"I": 4})
	report, err := svc.Report(ctx, user.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.User.Email != "awa@example.com" || report.RiasecScores == nil {
		t.Errorf("report = %+v", report)
	}
}

func TestSetPresenceInvalidatesStats(t *testing.T) {
	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "awa@example.com", false)

	before, err := f.stats.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if before.PresentUsers != 0 {
		t.Fatalf("PresentUsers = %d", before.PresentUsers)
	}

	res, err := svc.SetPresence(ctx, user.ID, true)
	if err != nil {
		t.Fatalf("SetPresence: %v", err)
	}
	if res.ID != user.ID || !res.IsPresent {
		t.Errorf("SetPresence = %+v", res)
	}

	after, err := f.stats.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if after.PresentUsers != 1 || after.PresenceRate != 100 {
		t.Errorf("stats after presence = %+v", after)
	}

	_, err = svc.SetPresence(ctx, 999, true)
	wantKind(t, err, apperr.KindNotFound)
}

func TestScanQRCode(t *testing.T) {
	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, dto.CreateUserRequest{Email: "awa@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	res, err := svc.ScanQRCode(ctx, *created.QRCode)
	if err != nil {
		t.Fatalf("ScanQRCode: %v", err)
	}
	if res.User.ID != created.ID || res.User.UserCode != "ET-0001" {
		t.Errorf("scan user = %+v", res.User)
	}
	if res.Test.HasTest || res.Test.HasReport || res.Test.DominantProfile != nil {
		t.Errorf("scan test = %+v", res.Test)
	}
	if !res.Presence.IsPresent || res.Presence.UpdatedAt.IsZero() {
		t.Errorf("scan presence = %+v", res.Presence)
	}
	stored, _ := f.users.FindByID(ctx, created.ID)
	if !stored.IsPresent {
		t.Error("user not marked present")
	}

	_, err = svc.ScanQRCode(ctx, "not-a-token")
	wantKind(t, err, apperr.KindValidation)
	_, err = svc.ScanQRCode(ctx, "EVENT_USER_999_1700000000_abcdef0123456789")
	wantKind(t, err, apperr.KindNotFound)
}

func TestScanQRCodeReportsFinishedTest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "awa@example.com", false)
	completeAllSteps(t, f.orientation(), user, map[string]any{"A": 3})

	res, err := f.admin().ScanQRCode(ctx, "EVENT_USER_1_1700000000_abcdef0123456789")
	if err != nil {
		t.Fatalf("ScanQRCode: %v", err)
	}
	if !res.Test.HasTest || !res.Test.HasReport || !res.Test.AllStepsCompleted {
		t.Errorf("scan test = %+v", res.Test)
	}
	if res.Test.DominantProfile == nil || *res.Test.DominantProfile != "A" {
		t.Errorf("dominant profile = %v", res.Test.DominantProfile)
	}
}

func TestExportUsers(t *testing.T) {
	f := newFixture(t)
	testutil.CreateUser(t, f.db, "awa@example.com", false)
	testutil.CreateUser(t, f.db, "moussa@example.com", false)
	testutil.CreateUser(t, f.db, "staff@example.com", true)

	content, err := f.admin().ExportUsers(context.Background(), "")
	if err != nil {
		t.Fatalf("ExportUsers: %v", err)
	}

	book, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 users", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][4] != "Email" {
		t.Errorf("header = %v", rows[0])
	}
	emails := rows[1][4] + "," + rows[2][4]
	if strings.Contains(emails, "staff@") {
		t.Errorf("export contains staff: %s", emails)
	}
}
