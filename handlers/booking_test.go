package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonbook/models"
	"salonbook/services/booking"
)

// stubService scripts the service layer per test.
type stubService struct {
	lastViewer     booking.Viewer
	lastSubmit     booking.SubmitRequest
	lastWithLinked bool

	listFn   func() (map[string][]models.AppointmentTypeSummary, error)
	slotsFn  func() (*booking.SlotListingResult, error)
	formFn   func() (*booking.FormContext, error)
	submitFn func() (*booking.SubmitResult, error)
	cancelFn func() error
}

func (s *stubService) ListAppointmentTypes(ctx context.Context, viewer booking.Viewer, f booking.ListFilter) (map[string][]models.AppointmentTypeSummary, error) {
	s.lastViewer = viewer
	if s.listFn != nil {
		return s.listFn()
	}
	return map[string][]models.AppointmentTypeSummary{}, nil
}

func (s *stubService) GetSlots(ctx context.Context, viewer booking.Viewer, typeID string, askedCapacity int, referenceDate string, withLinked bool) (*booking.SlotListingResult, error) {
	s.lastViewer = viewer
	s.lastWithLinked = withLinked
	if s.slotsFn != nil {
		return s.slotsFn()
	}
	return &booking.SlotListingResult{Timezone: "UTC"}, nil
}

func (s *stubService) GetBookingFormContext(ctx context.Context, viewer booking.Viewer, typeID string, sel booking.SlotSelection, askedCapacity int) (*booking.FormContext, error) {
	s.lastViewer = viewer
	if s.formFn != nil {
		return s.formFn()
	}
	return &booking.FormContext{TypeID: typeID}, nil
}

func (s *stubService) SubmitBooking(ctx context.Context, viewer booking.Viewer, req booking.SubmitRequest) (*booking.SubmitResult, error) {
	s.lastViewer = viewer
	s.lastSubmit = req
	if s.submitFn != nil {
		return s.submitFn()
	}
	return &booking.SubmitResult{Status: "committed"}, nil
}

func (s *stubService) CancelReservation(ctx context.Context, reservationID string) error {
	if s.cancelFn != nil {
		return s.cancelFn()
	}
	return nil
}

func newTestRouter(svc booking.BookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewBookingHandler(svc, zap.NewNop())

	api := r.Group("/api/booking")
	api.GET("/appointment-types", h.ListAppointmentTypes)
	api.GET("/appointment-types/:id/slots", h.GetSlots)
	api.POST("/appointment-types/:id/form", h.GetBookingForm)
	api.POST("/appointment-types/:id/submit", h.SubmitBooking)
	api.POST("/reservations/:id/cancel", h.CancelReservation)
	return r
}

func TestGetSlots_ViewerExtraction(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/booking/appointment-types/haircut/slots?capacity=2&invite_token=tok", nil)
	req.Header.Set("X-Customer-ID", "c1")
	req.Header.Set("X-Locale", "fr-BE")
	req.Header.Set("X-Timezone", "Europe/Brussels")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	v := svc.lastViewer
	if v.CustomerID != "c1" || v.Locale != "fr-BE" || v.Timezone != "Europe/Brussels" || v.InviteToken != "tok" {
		t.Fatalf("viewer not extracted: %+v", v)
	}
}

func TestGetSlots_AcceptLanguageFallback(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/booking/appointment-types/haircut/slots", nil)
	req.Header.Set("Accept-Language", "nl-BE")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if svc.lastViewer.Locale != "nl-BE" {
		t.Fatalf("expected Accept-Language fallback, got %q", svc.lastViewer.Locale)
	}
}

func TestGetSlots_LinkedResourcesFlag(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/booking/appointment-types/haircut/slots", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !svc.lastWithLinked {
		t.Fatalf("expected linked-resource pooling on by default")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/booking/appointment-types/haircut/slots?with_linked_resources=false", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastWithLinked {
		t.Fatalf("expected with_linked_resources=false to reach the service")
	}
}

func TestGetSlots_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", booking.ErrNotFound, http.StatusNotFound},
		{"validation", &booking.ValidationError{Field: "capacity", Reason: "negative"}, http.StatusBadRequest},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{slotsFn: func() (*booking.SlotListingResult, error) { return nil, tc.err }}
			router := newTestRouter(svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/booking/appointment-types/x/slots", nil))
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func submitBody() string {
	return `{
		"slotSelection": {"start": "2030-06-03T09:00:00", "timezone": "UTC"},
		"customer": {"name": "Jane Doe", "email": "jane@example.com", "phone": "+32495112233"},
		"askedCapacity": 1
	}`
}

func TestSubmitBooking_Committed(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/booking/appointment-types/haircut/submit", strings.NewReader(submitBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastSubmit.TypeID != "haircut" {
		t.Fatalf("expected type id from the path, got %q", svc.lastSubmit.TypeID)
	}
	if svc.lastSubmit.Customer.Name != "Jane Doe" {
		t.Fatalf("customer fields not bound: %+v", svc.lastSubmit.Customer)
	}
}

func TestSubmitBooking_RejectedMapsToConflict(t *testing.T) {
	svc := &stubService{submitFn: func() (*booking.SubmitResult, error) {
		return &booking.SubmitResult{Status: "rejected", Reason: booking.ReasonStaffUnavailable}, nil
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/booking/appointment-types/haircut/submit", strings.NewReader(submitBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	var res booking.SubmitResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if res.Reason != booking.ReasonStaffUnavailable {
		t.Fatalf("expected machine-readable reason, got %+v", res)
	}
}

func TestSubmitBooking_MissingCustomer(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/booking/appointment-types/haircut/submit",
		strings.NewReader(`{"slotSelection": {"start": "2030-06-03T09:00:00"}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on missing customer block, got %d", w.Code)
	}
}

func TestCancelReservation(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/booking/reservations/r1/cancel", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestListAppointmentTypes_Response(t *testing.T) {
	svc := &stubService{listFn: func() (map[string][]models.AppointmentTypeSummary, error) {
		return map[string][]models.AppointmentTypeSummary{
			"Downtown": {{ID: "haircut", Name: "Haircut", MaxCapacity: 1}},
		}, nil
	}}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/booking/appointment-types?location=Downtown", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Locations map[string][]models.AppointmentTypeSummary `json:"locations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if len(body.Locations["Downtown"]) != 1 {
		t.Fatalf("unexpected listing body: %s", w.Body.String())
	}
}
