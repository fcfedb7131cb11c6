package registration

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/aanand-mishra/raffle-registry/internal/logger"
	"github.com/aanand-mishra/raffle-registry/internal/metrics"
	"github.com/aanand-mishra/raffle-registry/internal/storage/memory"
	"github.com/aanand-mishra/raffle-registry/internal/types"
)

const caller = "ana.testnet"

func ana() types.Participant {
	return types.Participant{
		FirstName:    "Ana",
		LastName:     "Lopez",
		NationalID:   14000001,
		Email:        "a@b.com",
		TicketNumber: 11,
	}
}

func threshold() *big.Int {
	return new(big.Int).Set(MinimumPayment)
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	registry *memory.Memory
	metrics  *metrics.Metrics
	logs     *bytes.Buffer
	svc      *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.registry = memory.New()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logs = &bytes.Buffer{}
	s.svc = New(s.registry,
		WithLogger(slog.New(slog.NewTextHandler(s.logs, nil))),
		WithMetrics(s.metrics),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestRegisterThenGetOne() {
	s.Require().NoError(s.svc.Register(s.ctx, caller, threshold(), ana()))

	got, found, err := s.svc.GetOne(s.ctx, caller)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(ana(), got)

	s.Contains(s.logs.String(), "registration created")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(metrics.OutcomeCreated)))
}

func (s *ServiceSuite) TestRegisterWithPaymentAboveThreshold() {
	payment := new(big.Int).Mul(MinimumPayment, big.NewInt(5))
	s.Require().NoError(s.svc.Register(s.ctx, caller, payment, ana()))
}

func (s *ServiceSuite) TestGetOneAbsent() {
	got, found, err := s.svc.GetOne(s.ctx, "nobody.testnet")
	s.Require().NoError(err)
	s.False(found)
	s.Equal(types.Participant{}, got)
}

func (s *ServiceSuite) TestGetAllEmpty() {
	all, err := s.svc.GetAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(all)
	s.Empty(all)
}

func (s *ServiceSuite) TestSingleRuleViolations() {
	oneBelow := new(big.Int).Sub(MinimumPayment, big.NewInt(1))

	cases := []struct {
		name    string
		mutate  func(*types.Participant)
		payment *big.Int
		field   string
		reason  string
	}{
		{
			name:    "first name of two characters",
			mutate:  func(p *types.Participant) { p.FirstName = "Al" },
			payment: threshold(),
			field:   FieldFirstName,
			reason:  "first name must contain 3 or more characters",
		},
		{
			name:    "last name of two characters",
			mutate:  func(p *types.Participant) { p.LastName = "Lo" },
			payment: threshold(),
			field:   FieldLastName,
			reason:  "last name must contain 3 or more characters",
		},
		{
			name:    "zero national id",
			mutate:  func(p *types.Participant) { p.NationalID = 0 },
			payment: threshold(),
			field:   FieldNationalID,
			reason:  "national id is invalid",
		},
		{
			name:    "email of six characters",
			mutate:  func(p *types.Participant) { p.Email = "a@b.co" },
			payment: threshold(),
			field:   FieldEmail,
			reason:  "email must contain 7 or more characters",
		},
		{
			name:    "zero ticket number",
			mutate:  func(p *types.Participant) { p.TicketNumber = 0 },
			payment: threshold(),
			field:   FieldTicketNumber,
			reason:  "ticket number is invalid",
		},
		{
			name:    "payment one below threshold",
			mutate:  func(*types.Participant) {},
			payment: oneBelow,
			field:   FieldPayment,
			reason:  "a payment of at least 1 unit is required to register",
		},
		{
			name:    "no payment",
			mutate:  func(*types.Participant) {},
			payment: nil,
			field:   FieldPayment,
			reason:  "a payment of at least 1 unit is required to register",
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.SetupTest()
			p := ana()
			tc.mutate(&p)

			err := s.svc.Register(s.ctx, caller, tc.payment, p)
			s.Require().Error(err)
			s.Require().ErrorIs(err, ErrValidation)

			var verr *ValidationError
			s.Require().True(errors.As(err, &verr))
			s.Equal(tc.field, verr.Field)
			s.Equal(tc.reason, verr.Error())

			_, found, err := s.svc.GetOne(s.ctx, caller)
			s.Require().NoError(err)
			s.False(found, "nothing may be written on a rejected registration")
			s.NotContains(s.logs.String(), "registration created")
			s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(metrics.OutcomeRejected)))
		})
	}
}

func (s *ServiceSuite) TestRejectionKeepsPreviousRecord() {
	s.Require().NoError(s.svc.Register(s.ctx, caller, threshold(), ana()))

	bad := ana()
	bad.FirstName = "Al"
	bad.TicketNumber = 99
	s.Require().ErrorIs(s.svc.Register(s.ctx, caller, threshold(), bad), ErrValidation)

	got, found, err := s.svc.GetOne(s.ctx, caller)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(ana(), got)
}

func (s *ServiceSuite) TestFirstBrokenRuleWins() {
	p := types.Participant{FirstName: "Al", LastName: "Lo", Email: "x"}

	err := s.svc.Register(s.ctx, caller, nil, p)

	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal(FieldFirstName, verr.Field)
}

func (s *ServiceSuite) TestBoundariesAccepted() {
	p := types.Participant{
		FirstName:    "Ana",
		LastName:     "Paz",
		NationalID:   1,
		Email:        "a@b.com",
		TicketNumber: 1,
	}
	s.Require().NoError(s.svc.Register(s.ctx, caller, threshold(), p))

	got, found, err := s.svc.GetOne(s.ctx, caller)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(p, got)
}

func (s *ServiceSuite) TestAccentedNameAccepted() {
	p := ana()
	p.FirstName = "Íñé"
	s.Require().NoError(s.svc.Register(s.ctx, caller, threshold(), p))
}

func (s *ServiceSuite) TestLengthsCountUTF16Units() {
	cases := []struct {
		name   string
		mutate func(*types.Participant)
		ok     bool
		field  string
	}{
		{"first name of one emoji and a letter", func(p *types.Participant) { p.FirstName = "😀a" }, true, ""},
		{"first name of a single emoji", func(p *types.Participant) { p.FirstName = "😀" }, false, FieldFirstName},
		{"last name of one emoji and a letter", func(p *types.Participant) { p.LastName = "😀z" }, true, ""},
		{"email of seven units with emoji", func(p *types.Participant) { p.Email = "😀😀@bc" }, true, ""},
		{"email of six units with emoji", func(p *types.Participant) { p.Email = "😀😀@b" }, false, FieldEmail},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.SetupTest()
			p := ana()
			tc.mutate(&p)

			err := s.svc.Register(s.ctx, caller, threshold(), p)
			if tc.ok {
				s.Require().NoError(err)
				got, found, err := s.svc.GetOne(s.ctx, caller)
				s.Require().NoError(err)
				s.Require().True(found)
				s.Equal(p, got)
				return
			}

			var verr *ValidationError
			s.Require().True(errors.As(err, &verr))
			s.Equal(tc.field, verr.Field)
		})
	}
}

func (s *ServiceSuite) TestSuccessNoticeUsesContextLogger() {
	var reqLogs bytes.Buffer
	reqLogger := slog.New(slog.NewTextHandler(&reqLogs, nil)).With(slog.String("request_id", "req-7"))
	ctx := logger.WithContext(s.ctx, reqLogger)

	s.Require().NoError(s.svc.Register(ctx, caller, threshold(), ana()))

	s.Contains(reqLogs.String(), "registration created")
	s.Contains(reqLogs.String(), "request_id=req-7")
	s.NotContains(s.logs.String(), "registration created")
}

func (s *ServiceSuite) TestOverwriteBySameAccount() {
	second := types.Participant{
		FirstName:    "Beatriz",
		LastName:     "Moreno",
		NationalID:   22000002,
		Email:        "bea@example.com",
		TicketNumber: 42,
	}

	s.Require().NoError(s.svc.Register(s.ctx, caller, threshold(), ana()))
	s.Require().NoError(s.svc.Register(s.ctx, caller, threshold(), second))

	got, found, err := s.svc.GetOne(s.ctx, caller)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(second, got)

	all, err := s.svc.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Equal([]types.Participant{second}, all)
}

func (s *ServiceSuite) TestGetAllReturnsLatestPerAccount() {
	bob := types.Participant{FirstName: "Bob", LastName: "Smith", NationalID: 7, Email: "bob@x.io", TicketNumber: 3}
	bob2 := bob
	bob2.TicketNumber = 4
	cho := types.Participant{FirstName: "Cho", LastName: "Park", NationalID: 8, Email: "cho@x.io", TicketNumber: 5}

	s.Require().NoError(s.svc.Register(s.ctx, "ana", threshold(), ana()))
	s.Require().NoError(s.svc.Register(s.ctx, "bob", threshold(), bob))
	s.Require().NoError(s.svc.Register(s.ctx, "cho", threshold(), cho))
	s.Require().NoError(s.svc.Register(s.ctx, "bob", threshold(), bob2))

	bad := cho
	bad.Email = "short"
	s.Require().Error(s.svc.Register(s.ctx, "dan", threshold(), bad))

	all, err := s.svc.GetAll(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]types.Participant{ana(), bob2, cho}, all)
}

func (s *ServiceSuite) TestStorageFailureIsNotValidation() {
	svc := New(failingRegistry{err: errors.New("disk full")}, WithMetrics(s.metrics))

	err := svc.Register(s.ctx, caller, threshold(), ana())
	s.Require().Error(err)
	s.NotErrorIs(err, ErrValidation)
	s.Contains(err.Error(), "disk full")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(metrics.OutcomeFailed)))

	_, _, err = svc.GetOne(s.ctx, caller)
	s.Require().Error(err)

	_, err = svc.GetAll(s.ctx)
	s.Require().Error(err)
}

type failingRegistry struct{ err error }

func (f failingRegistry) Get(context.Context, string) (types.Participant, error) {
	return types.Participant{}, f.err
}

func (f failingRegistry) Values(context.Context) ([]types.Participant, error) {
	return nil, f.err
}

func (f failingRegistry) Upsert(context.Context, string, types.Participant) error {
	return f.err
}
