package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pokearena/battle-api/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "battle not found",
			expected: "NOT_FOUND: battle not found",
		},
		{
			name:     "failed precondition error",
			code:     errors.CodeFailedPrecondition,
			message:  "it is not your turn",
			expected: "FAILED_PRECONDITION: it is not your turn",
		},
		{
			name:     "resource exhausted error",
			code:     errors.CodeResourceExhausted,
			message:  "no potions remaining",
			expected: "RESOURCE_EXHAUSTED: no potions remaining",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Assert().Equal(tc.expected, err.Error())
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorWithMeta() {
	err := errors.NotFound("battle not found").
		WithMeta("battle_id", "battle_123").
		WithMeta("player_id", "player_456")

	s.Assert().Equal("battle_123", err.Meta["battle_id"])
	s.Assert().Equal("player_456", err.Meta["player_id"])
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("redis connection refused")
	wrapped := errors.Wrap(baseErr, "failed to load battle")

	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().Equal("failed to load battle", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	baseErr := errors.NotFound("record not found")
	wrapped := errors.Wrap(baseErr, "battle not found")

	s.Assert().Equal(errors.CodeNotFound, wrapped.Code)
	s.Assert().Equal("battle not found", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	baseErr := fmt.Errorf("unexpected record shape")
	wrapped := errors.WrapWithCode(baseErr, errors.CodeDataLoss, "corrupted battle record")

	s.Assert().Equal(errors.CodeDataLoss, wrapped.Code)
	s.Assert().Equal("corrupted battle record", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "should be nil"))
	s.Assert().Nil(errors.WrapWithCode(nil, errors.CodeInternal, "should be nil"))
}

func (s *ErrorsTestSuite) TestIsMatchesByCode() {
	err := errors.Wrap(errors.FailedPrecondition("battle is not active"), "submit turn")

	s.Assert().True(errors.Is(err, errors.FailedPrecondition("anything")))
	s.Assert().False(errors.Is(err, errors.NotFound("anything")))
}

func (s *ErrorsTestSuite) TestGetCode() {
	s.Assert().Equal(errors.CodeOK, errors.GetCode(nil))
	s.Assert().Equal(errors.CodeResourceExhausted, errors.GetCode(errors.ResourceExhausted("no items")))
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("plain error")))
}

func (s *ErrorsTestSuite) TestTypeCheckers() {
	s.Assert().True(errors.IsNotFound(errors.NotFound("nope")))
	s.Assert().True(errors.IsFailedPrecondition(errors.FailedPrecondition("nope")))
	s.Assert().True(errors.IsResourceExhausted(errors.ResourceExhausted("nope")))
	s.Assert().True(errors.IsPermissionDenied(errors.PermissionDenied("nope")))
	s.Assert().True(errors.IsDataLoss(errors.DataLoss("nope")))
	s.Assert().False(errors.IsNotFound(errors.Internal("nope")))
}

func (s *ErrorsTestSuite) TestToGRPCError() {
	err := errors.ToGRPCError(errors.FailedPrecondition("it is not your turn"))

	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Assert().Equal(codes.FailedPrecondition, st.Code())
	s.Assert().Equal("it is not your turn", st.Message())

	s.Assert().Nil(errors.ToGRPCError(nil))
}

func (s *ErrorsTestSuite) TestValidationBuilder() {
	err := errors.NewValidationBuilder().Build()
	s.Assert().Nil(err)

	err = errors.NewValidationBuilder().
		RequiredField("BattleRepo").
		RequiredField("Engine").
		Build()
	s.Require().NotNil(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	meta := errors.GetMeta(err)
	fields, ok := meta["validation_errors"].(map[string][]string)
	s.Require().True(ok)
	s.Assert().Contains(fields, "BattleRepo")
	s.Assert().Contains(fields, "Engine")
}
