package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/offsettrade/visa-checker-bot/internal/config"
	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
	"github.com/offsettrade/visa-checker-bot/internal/core/json_types"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
)

type PortalAdapter struct {
	client   *http.Client
	baseURL  string
	token    atomic.Pointer[string]
	identity domain.IdentityContext
	logger   out.LoggerPort
}

func NewPortalAdapter(cfg *config.Config, logger out.LoggerPort) *PortalAdapter {
	a := &PortalAdapter{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  cfg.Portal.URL,
		identity: cfg.Identity(),
		logger:   logger,
	}

	token := cfg.Portal.AuthToken
	a.token.Store(&token)

	return a
}

// RotateToken заменяет токен авторизации
// Каждый запрос читает атомарный снимок, так что замена безопасна на лету
func (a *PortalAdapter) RotateToken(token string) {
	a.token.Store(&token)
	a.logger.Info("portal.token.rotated", out.LogFields{})
}

type slotDatesRequest struct {
	FromDate      string `json:"fromDate"`
	ToDate        string `json:"toDate"`
	PostUserID    int    `json:"postUserId"`
	ApplicantID   string `json:"applicantId"`
	ApplicationID string `json:"applicationId"`
	LocationType  string `json:"locationType"`
	VisaClass     string `json:"visaClass"`
	VisaType      string `json:"visaType"`
}

func (a *PortalAdapter) GetAvailableDates(ctx context.Context, window domain.DateWindow) ([]time.Time, error) {
	requestID := uuid.New()

	body := slotDatesRequest{
		FromDate:      window.FromString(),
		ToDate:        window.ToString(),
		PostUserID:    a.identity.PostUserID,
		ApplicantID:   a.identity.ApplicantID,
		ApplicationID: a.identity.ApplicationID,
		LocationType:  "POST",
		VisaClass:     a.identity.VisaClass,
		VisaType:      a.identity.VisaType,
	}

	resp, err := a.do(ctx, http.MethodPost, "getSlotDates", body)
	if err != nil {
		a.logger.Error("portal.dates.fetch_failed", out.LogFields{
			"requestId": requestID,
			"error":     err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		// Дат нет - это валидный пустой результат
		return nil, nil
	case http.StatusUnauthorized:
		a.logger.Warn("portal.dates.auth_expired", out.LogFields{
			"requestId": requestID,
		})
		return nil, out.ErrAuthExpired
	case http.StatusForbidden:
		a.logger.Warn("portal.dates.forbidden", out.LogFields{
			"requestId": requestID,
		})
		return nil, out.ErrForbidden
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("portal.dates.fetch_failed", out.LogFields{
			"requestId": requestID,
			"status":    resp.StatusCode,
		})
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var rawDates []json_types.FlexDate
	if err := json.NewDecoder(resp.Body).Decode(&rawDates); err != nil {
		a.logger.Error("portal.dates.decode_failed", out.LogFields{
			"requestId": requestID,
			"error":     err.Error(),
		})
		return nil, err
	}

	dates := make([]time.Time, 0, len(rawDates))
	for _, d := range rawDates {
		dates = append(dates, d.Date)
	}

	a.logger.Debug("portal.dates.fetch_success", out.LogFields{
		"requestId": requestID,
		"count":     len(dates),
	})

	return dates, nil
}

type slotTimesRequest struct {
	FromDate      string `json:"fromDate"`
	ToDate        string `json:"toDate"`
	SlotDate      string `json:"slotDate"`
	PostUserID    int    `json:"postUserId"`
	ApplicantID   string `json:"applicantId"`
	ApplicationID string `json:"applicationId"`
	VisaClass     string `json:"visaClass"`
	VisaType      string `json:"visaType"`
}

func (a *PortalAdapter) GetAvailableTimes(ctx context.Context, window domain.DateWindow, date time.Time) ([]domain.Slot, error) {
	requestID := uuid.New()

	body := slotTimesRequest{
		FromDate:      window.FromString(),
		ToDate:        window.ToString(),
		SlotDate:      date.Format("2006-01-02"),
		PostUserID:    a.identity.PostUserID,
		ApplicantID:   a.identity.ApplicantID,
		ApplicationID: a.identity.ApplicationID,
		VisaClass:     a.identity.VisaClass,
		VisaType:      a.identity.VisaType,
	}

	resp, err := a.do(ctx, http.MethodPost, "getSlotTimes", body)
	if err != nil {
		a.logger.Error("portal.times.fetch_failed", out.LogFields{
			"requestId": requestID,
			"slotDate":  body.SlotDate,
			"error":     err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		a.logger.Warn("portal.times.auth_expired", out.LogFields{
			"requestId": requestID,
			"slotDate":  body.SlotDate,
		})
		return nil, out.ErrAuthExpired
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("portal.times.fetch_failed", out.LogFields{
			"requestId": requestID,
			"slotDate":  body.SlotDate,
			"status":    resp.StatusCode,
		})
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var slots []domain.Slot
	if err := json.NewDecoder(resp.Body).Decode(&slots); err != nil {
		a.logger.Error("portal.times.decode_failed", out.LogFields{
			"requestId": requestID,
			"slotDate":  body.SlotDate,
			"error":     err.Error(),
		})
		return nil, err
	}

	a.logger.Debug("portal.times.fetch_success", out.LogFields{
		"requestId": requestID,
		"slotDate":  body.SlotDate,
		"count":     len(slots),
	})

	return slots, nil
}

type rescheduleRequest struct {
	ApplicantID     string `json:"applicantId"`
	ApplicationID   string `json:"applicationId"`
	PostUserID      int    `json:"postUserId"`
	AppointmentID   int    `json:"appointmentId"`
	AppointmentDt   string `json:"appointmentDt"`
	AppointmentTime string `json:"appointmentTime"`
	SlotID          string `json:"slotId"`
	FromDate        string `json:"fromDate"`
	ToDate          string `json:"toDate"`
	VisaType        string `json:"visaType"`
	VisaClass       string `json:"visaClass"`
}

type rescheduleStatusResponse struct {
	Status int `json:"status"`
}

type rescheduleEntryResponse struct {
	AppointmentStatus string `json:"appointmentStatus"`
}

func (a *PortalAdapter) SubmitReschedule(ctx context.Context, window domain.DateWindow, slot domain.Slot) (domain.RescheduleOutcome, error) {
	requestID := uuid.New()

	// Тело запроса - массив из одного элемента, так его ожидает портал
	body := []rescheduleRequest{{
		ApplicantID:     a.identity.ApplicantID,
		ApplicationID:   a.identity.ApplicationID,
		PostUserID:      a.identity.PostUserID,
		AppointmentID:   a.identity.AppointmentID,
		AppointmentDt:   slot.Date.Date.Format("2006-01-02"),
		AppointmentTime: slot.StartTime.Format12Hour(),
		SlotID:          slot.ID,
		FromDate:        window.FromString(),
		ToDate:          window.ToString(),
		VisaType:        a.identity.VisaType,
		VisaClass:       a.identity.VisaClass,
	}}

	resp, err := a.do(ctx, http.MethodPut, "reschedule", body)
	if err != nil {
		a.logger.Error("portal.reschedule.submit_failed", out.LogFields{
			"requestId": requestID,
			"slotId":    slot.ID,
			"error":     err.Error(),
		})
		return domain.RescheduleOutcome{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		a.logger.Warn("portal.reschedule.auth_expired", out.LogFields{
			"requestId": requestID,
			"slotId":    slot.ID,
		})
		return domain.RescheduleOutcome{}, out.ErrAuthExpired
	case http.StatusConflict:
		a.logger.Info("portal.reschedule.conflict", out.LogFields{
			"requestId": requestID,
			"slotId":    slot.ID,
		})
		return domain.RescheduleOutcome{
			SlotID: slot.ID,
			Status: domain.RescheduleStatusConflict,
		}, nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		a.logger.Error("portal.reschedule.submit_failed", out.LogFields{
			"requestId": requestID,
			"slotId":    slot.ID,
			"status":    resp.StatusCode,
		})
		return domain.RescheduleOutcome{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return a.decodeRescheduleOutcome(requestID, slot, resp.Body)
}

// Ответ на reschedule приходит в двух формах: объект со status
// либо массив, где первый элемент несет appointmentStatus
func (a *PortalAdapter) decodeRescheduleOutcome(requestID uuid.UUID, slot domain.Slot, body io.Reader) (domain.RescheduleOutcome, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return domain.RescheduleOutcome{}, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []rescheduleEntryResponse
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			a.logger.Error("portal.reschedule.decode_failed", out.LogFields{
				"requestId": requestID,
				"slotId":    slot.ID,
				"error":     err.Error(),
			})
			return domain.RescheduleOutcome{}, err
		}
		if len(entries) == 0 {
			return domain.RescheduleOutcome{}, fmt.Errorf("empty reschedule response")
		}

		a.logger.Info("portal.reschedule.scheduled", out.LogFields{
			"requestId":         requestID,
			"slotId":            slot.ID,
			"appointmentStatus": entries[0].AppointmentStatus,
		})
		return domain.RescheduleOutcome{
			SlotID: slot.ID,
			Status: domain.RescheduleStatusScheduled,
			Detail: entries[0].AppointmentStatus,
		}, nil
	}

	var statusResponse rescheduleStatusResponse
	if err := json.Unmarshal(trimmed, &statusResponse); err != nil {
		a.logger.Error("portal.reschedule.decode_failed", out.LogFields{
			"requestId": requestID,
			"slotId":    slot.ID,
			"error":     err.Error(),
		})
		return domain.RescheduleOutcome{}, err
	}

	if statusResponse.Status == http.StatusConflict {
		a.logger.Info("portal.reschedule.conflict", out.LogFields{
			"requestId": requestID,
			"slotId":    slot.ID,
		})
		return domain.RescheduleOutcome{
			SlotID: slot.ID,
			Status: domain.RescheduleStatusConflict,
		}, nil
	}

	a.logger.Info("portal.reschedule.scheduled", out.LogFields{
		"requestId": requestID,
		"slotId":    slot.ID,
	})
	return domain.RescheduleOutcome{
		SlotID: slot.ID,
		Status: domain.RescheduleStatusScheduled,
	}, nil
}

func (a *PortalAdapter) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", a.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token := a.token.Load(); token != nil && *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	return a.client.Do(req)
}
