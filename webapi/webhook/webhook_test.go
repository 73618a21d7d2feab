package webhook_test

import (
	"io"
	"strings"
	"testing"

	"github.com/amirasaad/payoutrouter/pkg/iso20022"
	"github.com/amirasaad/payoutrouter/pkg/service/ingest"
	"github.com/amirasaad/payoutrouter/webapi/common"
	"github.com/amirasaad/payoutrouter/webapi/testutils"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type WebhookTestSuite struct {
	testutils.E2ETestSuite
}

func TestWebhookTestSuite(t *testing.T) {
	suite.Run(t, new(WebhookTestSuite))
}

type transferBody struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Summary       string `json:"summary"`
	Payouts       []struct {
		Leg      int    `json:"leg"`
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Error    string `json:"error"`
	} `json:"payouts"`
}

type resultBody struct {
	Status    string         `json:"status"`
	MessageID string         `json:"message_id"`
	Transfers []transferBody `json:"transfers"`
}

func (s *WebhookTestSuite) decode(body io.Reader, out any) {
	raw, err := io.ReadAll(body)
	s.Require().NoError(err)
	s.Require().NoError(sonic.Unmarshal(raw, out), string(raw))
}

func (s *WebhookTestSuite) TestSplitsOverLimitTransfer() {
	resp := s.SignedRequest(testutils.Message("MSG-1", testutils.Transfer("7000.00", "USD", "INV-1")))
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var res resultBody
	s.decode(resp.Body, &res)
	s.Equal(string(ingest.StatusProcessed), res.Status)
	s.Equal("MSG-1", res.MessageID)
	s.Require().Len(res.Transfers, 1)
	tr := res.Transfers[0]
	s.Equal("all_succeeded", tr.Summary)
	s.Require().Len(tr.Payouts, 2)
	s.Equal(int64(500000), tr.Payouts[0].Amount)
	s.Equal("eur", tr.Payouts[0].Currency)
	s.Equal(int64(200000), tr.Payouts[1].Amount)
	s.Equal("gbp", tr.Payouts[1].Currency)

	s.Equal(int64(1), s.CountRows("transactions"))
	s.Equal(int64(2), s.CountRows("payouts"))
}

func (s *WebhookTestSuite) TestPartialFailureIsVisible() {
	s.Gateway.RejectCurrency("gbp", "insufficient_funds", "balance too low")

	resp := s.SignedRequest(testutils.Message("MSG-2", testutils.Transfer("6000", "EUR", "INV-2")))
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var res resultBody
	s.decode(resp.Body, &res)
	s.Require().Len(res.Transfers, 1)
	tr := res.Transfers[0]
	s.Equal("partially_failed", tr.Summary)
	s.Require().Len(tr.Payouts, 2)
	s.NotEmpty(tr.Payouts[0].ID)
	s.Equal("balance too low", tr.Payouts[1].Error)
	s.Equal(int64(2), s.CountRows("payouts"))
}

func (s *WebhookTestSuite) TestDuplicateDeliveryIsNotPaidTwice() {
	body := testutils.Message("MSG-3", testutils.Transfer("10.00", "GBP", "INV-3"))

	first := s.SignedRequest(body)
	defer first.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, first.StatusCode)

	second := s.SignedRequest(body)
	defer second.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, second.StatusCode)
	var res resultBody
	s.decode(second.Body, &res)
	s.Equal(string(ingest.StatusDuplicate), res.Status)

	s.Len(s.Gateway.Submitted(), 1)
	s.Equal(int64(1), s.CountRows("transactions"))
}

func (s *WebhookTestSuite) TestRejectedDeliveries() {
	valid := testutils.Message("MSG-4", testutils.Transfer("10.00", "EUR", "INV-4"))
	sign := func(body string) string {
		return iso20022.Sign([]byte(testutils.Secret), []byte(body))
	}
	testCases := []struct {
		desc       string
		body       string
		signature  func(body string) string
		wantStatus int
	}{
		{
			desc:       "missing signature",
			body:       valid,
			signature:  func(string) string { return "" },
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			desc:       "wrong signature",
			body:       valid,
			signature:  func(string) string { return strings.Repeat("ab", 32) },
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			desc:       "not a credit transfer",
			body:       `{"hello":"world"}`,
			signature:  sign,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "zero amount",
			body:       testutils.Message("MSG-5", testutils.Transfer("0", "EUR", "INV-5")),
			signature:  sign,
			wantStatus: fiber.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			headers := map[string]string{}
			if sig := tc.signature(tc.body); sig != "" {
				headers[s.Cfg.Webhook.SignatureHeader] = sig
			}
			resp := s.MakeRequest(fiber.MethodPost, "/webhook", tc.body, headers)
			defer resp.Body.Close() //nolint:errcheck
			s.Equal(tc.wantStatus, resp.StatusCode)
			s.Equal(common.MIMEProblemJSON, resp.Header.Get(fiber.HeaderContentType))

			var pd common.ProblemDetails
			s.decode(resp.Body, &pd)
			s.Equal(tc.wantStatus, pd.Status)
			s.Equal("/webhook", pd.Instance)
		})
	}
	s.Equal(int64(0), s.CountRows("transactions"))
	s.Empty(s.Gateway.Submitted())
}

func (s *WebhookTestSuite) TestOversizedBodyIsRejected() {
	body := testutils.Message("MSG-6", testutils.Transfer("10.00", "EUR", strings.Repeat("x", 5000)))
	resp := s.SignedRequest(body)
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	s.Empty(s.Gateway.Submitted())
}

func (s *WebhookTestSuite) TestEmptyTransferListIsIgnored() {
	resp := s.SignedRequest(testutils.Message("MSG-7"))
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var res resultBody
	s.decode(resp.Body, &res)
	s.Equal(string(ingest.StatusIgnored), res.Status)
	s.Empty(s.Gateway.Submitted())
}
