//go:build e2e

package reservation

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"court-booking/internal/domain/payment"
	"court-booking/internal/domain/reservation"
	"court-booking/internal/domain/user"
	resdto "court-booking/internal/handler/dto/response"
	"court-booking/internal/usecase/shared"
	"court-booking/tests/common/dbtest"
	"court-booking/tests/common/httptest"
	"court-booking/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReservationE2ESuite struct {
	e2e.SharedSuite
}

func TestReservationE2E(t *testing.T) {
	suite.Run(t, new(ReservationE2ESuite))
}

type fixture struct {
	resourceID  uuid.UUID
	memberID    uuid.UUID
	memberToken string
	otherToken  string
	adminToken  string
	date        string
}

func (s *ReservationE2ESuite) newFixture() fixture {
	t := s.T()
	ownerID := uuid.New()
	memberID := uuid.New()

	return fixture{
		resourceID:  dbtest.CreateTestResource(t, s.DB, ownerID, "Court A", 2000),
		memberID:    memberID,
		memberToken: s.JWT.GenerateToken(t, memberID, user.RoleMember),
		otherToken:  s.JWT.Member(t).Token,
		adminToken:  s.JWT.Admin(t).Token,
		date:        time.Now().AddDate(0, 0, 7).Format(reservation.DateLayout),
	}
}

func (s *ReservationE2ESuite) create(f fixture, start, end string, headers map[string]string) (*resdto.CreateReservationResponse, int) {
	body := map[string]string{
		"resourceId": f.resourceID.String(),
		"date":       f.date,
		"startTime":  start,
		"endTime":    end,
	}
	w := httptest.PerformRequestWithHeaders(s.T(), s.Router, http.MethodPost, "/api/reservations", body, headers, f.memberToken)
	if w.Code != http.StatusCreated {
		return nil, w.Code
	}
	var res resdto.CreateReservationResponse
	s.NoError(httptest.DecodeResponseBody(s.T(), w.Body, &res))
	return &res, w.Code
}

func (s *ReservationE2ESuite) intentID(f fixture, id uuid.UUID) string {
	w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/reservations/"+id.String(), nil, f.memberToken)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var view resdto.ReservationResponse
	require.NoError(s.T(), httptest.DecodeResponseBody(s.T(), w.Body, &view))
	require.NotEmpty(s.T(), view.PaymentIntentID)
	return view.PaymentIntentID
}

func (s *ReservationE2ESuite) TestBookAndPay() {
	s.Run("confirm is refused until the payment succeeds", func() {
		f := s.newFixture()

		created, code := s.create(f, "10:00", "11:30", nil)
		s.Require().Equal(http.StatusCreated, code)
		s.Equal("pending", created.Status)
		s.Equal(int64(3000), created.TotalPrice)
		s.NotEmpty(created.PaymentClientSecret)

		intent := s.intentID(f, created.ReservationID)
		confirmPath := fmt.Sprintf("/api/reservations/%s/confirm", created.ReservationID)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, confirmPath, map[string]string{"intentId": intent}, f.memberToken)
		s.Equal(http.StatusConflict, w.Code)

		s.Require().NoError(s.Gateway.Succeed(intent))

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, confirmPath, map[string]string{"intentId": intent}, f.memberToken)
		s.Require().Equal(http.StatusOK, w.Code)
		var transition resdto.TransitionResponse
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &transition))
		s.Equal("confirmed", transition.Status)

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/reservations/"+created.ReservationID.String(), nil, f.memberToken)
		s.Require().Equal(http.StatusOK, w.Code)
		var view resdto.ReservationResponse
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &view))
		s.Equal("confirmed", view.Status)
		s.Nil(view.ExpiresAt)

		path := fmt.Sprintf("/api/resources/%s/availability?date=%s", f.resourceID, f.date)
		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, path, nil, f.otherToken)
		s.Require().Equal(http.StatusOK, w.Code)
		var availability resdto.AvailabilityResponse
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &availability))
		s.Require().Len(availability.Booked, 1)
		s.Equal("10:00", availability.Booked[0].StartTime)
		s.Equal("11:30", availability.Booked[0].EndTime)

		s.Equal(1, dbtest.CountNotificationJobs(s.T(), s.DB, shared.NotificationKindConfirmed))
	})

	s.Run("another member cannot see or cancel the reservation", func() {
		f := s.newFixture()

		created, code := s.create(f, "09:00", "10:00", nil)
		s.Require().Equal(http.StatusCreated, code)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/reservations/"+created.ReservationID.String(), nil, f.otherToken)
		s.Equal(http.StatusForbidden, w.Code)

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			fmt.Sprintf("/api/reservations/%s/cancel", created.ReservationID), nil, f.otherToken)
		s.Equal(http.StatusForbidden, w.Code)
	})
}

func (s *ReservationE2ESuite) TestSlotContention() {
	s.Run("overlapping slot is rejected and the adjacent one is accepted", func() {
		f := s.newFixture()

		_, code := s.create(f, "10:00", "11:00", nil)
		s.Require().Equal(http.StatusCreated, code)

		_, code = s.create(f, "10:30", "11:30", nil)
		s.Equal(http.StatusConflict, code)

		_, code = s.create(f, "11:00", "12:00", nil)
		s.Equal(http.StatusCreated, code)
	})

	s.Run("concurrent bookings of the same slot admit exactly one", func() {
		f := s.newFixture()
		const attempts = 8

		var wg sync.WaitGroup
		codes := make([]int, attempts)
		for i := range attempts {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, codes[i] = s.create(f, "18:00", "19:00", nil)
			}(i)
		}
		wg.Wait()

		created, conflicts := 0, 0
		for _, c := range codes {
			switch c {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicts++
			}
		}
		s.Equal(1, created)
		s.Equal(attempts-1, conflicts)
	})

	s.Run("cancelled slot can be booked again", func() {
		f := s.newFixture()

		first, code := s.create(f, "14:00", "15:00", nil)
		s.Require().Equal(http.StatusCreated, code)
		intent := s.intentID(f, first.ReservationID)

		cancelPath := fmt.Sprintf("/api/reservations/%s/cancel", first.ReservationID)
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, cancelPath, nil, f.memberToken)
		s.Require().Equal(http.StatusOK, w.Code)
		s.True(s.Gateway.Cancelled(intent))

		status, reason := dbtest.ReservationStatus(s.T(), s.DB, first.ReservationID)
		s.Equal("cancelled", status)
		s.Equal(reservation.ReasonUserCancelled.String(), reason)
		s.Equal([]string{shared.NotificationKindCancelled}, dbtest.NotificationKinds(s.T(), s.DB, first.ReservationID))

		_, code = s.create(f, "14:00", "15:00", nil)
		s.Equal(http.StatusCreated, code)

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, cancelPath, nil, f.memberToken)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *ReservationE2ESuite) TestAccess() {
	s.Run("admin cancels on behalf of a member", func() {
		f := s.newFixture()

		created, code := s.create(f, "16:00", "17:00", nil)
		s.Require().Equal(http.StatusCreated, code)

		cancelPath := fmt.Sprintf("/api/reservations/%s/cancel", created.ReservationID)
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, cancelPath, nil, f.adminToken)
		s.Require().Equal(http.StatusOK, w.Code)

		status, reason := dbtest.ReservationStatus(s.T(), s.DB, created.ReservationID)
		s.Equal("cancelled", status)
		s.Equal(reservation.ReasonAdminCancelled.String(), reason)
	})

	s.Run("expired token is rejected", func() {
		f := s.newFixture()
		token := s.JWT.ExpiredToken(s.T(), f.memberID, user.RoleMember)

		w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/reservations", nil, token)
		httptest.AssertErrorCode(s.T(), w, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *ReservationE2ESuite) TestIdempotentCreate() {
	s.Run("retry with the same key replays the first response", func() {
		f := s.newFixture()
		headers := map[string]string{"Idempotency-Key": uuid.NewString()}

		first, code := s.create(f, "08:00", "09:00", headers)
		s.Require().Equal(http.StatusCreated, code)

		body := map[string]string{
			"resourceId": f.resourceID.String(),
			"date":       f.date,
			"startTime":  "08:00",
			"endTime":    "09:00",
		}
		w := httptest.PerformRequestWithHeaders(s.T(), s.Router, http.MethodPost, "/api/reservations", body, headers, f.memberToken)
		s.Require().Equal(http.StatusCreated, w.Code)
		s.Equal("true", w.Header().Get("Idempotent-Replayed"))
		var replay resdto.CreateReservationResponse
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &replay))
		s.Equal(first.ReservationID, replay.ReservationID)
	})

	s.Run("same key with a different body is rejected", func() {
		f := s.newFixture()
		headers := map[string]string{"Idempotency-Key": uuid.NewString()}

		_, code := s.create(f, "08:00", "09:00", headers)
		s.Require().Equal(http.StatusCreated, code)

		_, code = s.create(f, "09:00", "10:00", headers)
		s.Equal(http.StatusUnprocessableEntity, code)
	})
}

func (s *ReservationE2ESuite) TestPaymentWebhook() {
	s.Run("signed success notification confirms once", func() {
		f := s.newFixture()

		created, code := s.create(f, "16:00", "17:00", nil)
		s.Require().Equal(http.StatusCreated, code)
		intent := s.intentID(f, created.ReservationID)
		s.Require().NoError(s.Gateway.Succeed(intent))

		payload, signature, err := s.Gateway.SignedEvent(intent, payment.EventIntentSucceeded)
		s.Require().NoError(err)
		headers := map[string]string{"Stripe-Signature": signature}

		w := httptest.PerformRawRequest(s.T(), s.Router, http.MethodPost, "/webhooks/payments", payload, headers)
		s.Require().Equal(http.StatusOK, w.Code)
		var ack resdto.WebhookResponse
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &ack))
		s.Equal("processed", ack.Outcome)

		w = httptest.PerformRawRequest(s.T(), s.Router, http.MethodPost, "/webhooks/payments", payload, headers)
		s.Require().Equal(http.StatusOK, w.Code)
		ack = resdto.WebhookResponse{}
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &ack))
		s.Equal("duplicate", ack.Outcome)

		status, _ := dbtest.ReservationStatus(s.T(), s.DB, created.ReservationID)
		s.Equal("confirmed", status)
		s.Equal(1, dbtest.CountNotificationJobs(s.T(), s.DB, shared.NotificationKindConfirmed))
	})

	s.Run("tampered notification is rejected", func() {
		f := s.newFixture()

		created, code := s.create(f, "16:00", "17:00", nil)
		s.Require().Equal(http.StatusCreated, code)
		intent := s.intentID(f, created.ReservationID)

		payload, signature, err := s.Gateway.SignedEvent(intent, payment.EventIntentSucceeded)
		s.Require().NoError(err)
		payload = append(payload, ' ')

		w := httptest.PerformRawRequest(s.T(), s.Router, http.MethodPost, "/webhooks/payments", payload,
			map[string]string{"Stripe-Signature": signature})
		s.Equal(http.StatusBadRequest, w.Code)

		status, _ := dbtest.ReservationStatus(s.T(), s.DB, created.ReservationID)
		s.Equal("pending", status)
	})

	s.Run("failed payment keeps the hold pending", func() {
		f := s.newFixture()

		created, code := s.create(f, "20:00", "21:00", nil)
		s.Require().Equal(http.StatusCreated, code)
		intent := s.intentID(f, created.ReservationID)
		s.Require().NoError(s.Gateway.Fail(intent))

		payload, signature, err := s.Gateway.SignedEvent(intent, payment.EventIntentFailed)
		s.Require().NoError(err)

		w := httptest.PerformRawRequest(s.T(), s.Router, http.MethodPost, "/webhooks/payments", payload,
			map[string]string{"Stripe-Signature": signature})
		s.Require().Equal(http.StatusOK, w.Code)

		status, _ := dbtest.ReservationStatus(s.T(), s.DB, created.ReservationID)
		s.Equal("pending", status)
	})
}

func (s *ReservationE2ESuite) TestHoldExpiry() {
	s.Run("reaper releases an unpaid hold", func() {
		f := s.newFixture()

		created, code := s.create(f, "12:00", "13:00", nil)
		s.Require().Equal(http.StatusCreated, code)
		intent := s.intentID(f, created.ReservationID)

		dbtest.ExpireHold(s.T(), s.DB, created.ReservationID)

		result, err := s.Reaper.Sweep(context.Background())
		s.Require().NoError(err)
		s.Equal(1, result.Expired)
		s.Zero(result.Failed)

		status, reason := dbtest.ReservationStatus(s.T(), s.DB, created.ReservationID)
		s.Equal("cancelled", status)
		s.Equal(reservation.ReasonExpired.String(), reason)
		s.True(s.Gateway.Cancelled(intent))
		s.Equal(1, dbtest.CountNotificationJobs(s.T(), s.DB, shared.NotificationKindExpired))
		s.Equal([]string{shared.NotificationKindExpired}, dbtest.NotificationKinds(s.T(), s.DB, created.ReservationID))

		_, code = s.create(f, "12:00", "13:00", nil)
		s.Equal(http.StatusCreated, code)
	})

	s.Run("dispatcher drains queued notifications", func() {
		f := s.newFixture()

		created, code := s.create(f, "12:00", "13:00", nil)
		s.Require().Equal(http.StatusCreated, code)
		dbtest.ExpireHold(s.T(), s.DB, created.ReservationID)
		_, err := s.Reaper.Sweep(context.Background())
		s.Require().NoError(err)

		result, err := s.Dispatcher.DispatchOnce(context.Background())
		s.Require().NoError(err)
		assert.Equal(s.T(), 1, result.Sent)
		assert.Zero(s.T(), result.Failed)
	})
}
