package invitation

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lshigami/orientation-event/internal/model"
)

func strPtr(s string) *string { return &s }

func TestRender(t *testing.T) {
	r := NewRenderer(Event{
		Subtitle: "Forum National de la Smart Orientation",
		Date:     "04 décembre 2025",
		Venue:    "Hotel Palm Plaza, Marrakech",
		Footer:   "Orientation | 100% Orientation",
		LogoPath: "/does/not/exist.png",
	})
	u := &model.User{
		ID:        42,
		Email:     "awa@example.com",
		FirstName: strPtr("Awa"),
		LastName:  strPtr("Diallo"),
		QRCode:    strPtr("EVENT_USER_42_1700000000_abcdef0123456789"),
	}

	out, err := r.Render(u)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output is not a PDF document")
	}
}

func TestRenderWithoutToken(t *testing.T) {
	_, err := NewRenderer(Event{}).Render(&model.User{ID: 1, Email: "a@b.c"})
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("err = %v, want ErrMissingToken", err)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		user *model.User
		want string
	}{
		{&model.User{Email: "x@y.z", FirstName: strPtr("Awa"), LastName: strPtr("Diallo")}, "invitation-awa-diallo.pdf"},
		{&model.User{Email: "Jean.Dupont@mail.com"}, "invitation-jean-dupont-mail-com.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.user); got != tt.want {
			t.Errorf("Filename = %q, want %q", got, tt.want)
		}
	}
}

func TestGuestName(t *testing.T) {
	u := &model.User{Email: "a@b.c", FirstName: strPtr("Awa"), LastName: strPtr("Diallo")}
	if got := guestName(u); got != "Diallo Awa" {
		t.Errorf("guestName = %q", got)
	}
	if got := guestName(&model.User{Email: "a@b.c"}); got != "a@b.c" {
		t.Errorf("guestName fallback = %q", got)
	}
}
