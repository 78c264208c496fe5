package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInTests(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name  string
		test  Test
		input string
		want  bool
	}{
		{"required present", Required(), "x", true},
		{"required empty", Required(), "", false},
		{"min ok", MinLength(2), "ab", true},
		{"min short", MinLength(2), "a", false},
		{"min counts runes", MinLength(2), "éé", true},
		{"max ok", MaxLength(200), strings.Repeat("a", 200), true},
		{"max long", MaxLength(200), strings.Repeat("a", 201), false},
		{"email ok", Email(), "a@x.com", true},
		{"email bad", Email(), "not-an-email", false},
		{"date ok", Date(), "1999-12-31", true},
		{"date bad", Date(), "31/12/1999", false},
		{"positive", PositiveInt(), "3", true},
		{"zero", PositiveInt(), "0", false},
		{"negative", PositiveInt(), "-2", false},
		{"not a number", PositiveInt(), "abc", false},
		{"empty number passes", PositiveInt(), "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.test(ctx, tc.input, Form{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateReportsEveryFailureInOrder(t *testing.T) {
	rules := Rules{
		Check("userName", "Username is required", Required()),
		Check("userName", "Username should at least be 2 characters long", MinLength(2)),
		Check("email", "Email is not valid", Email()),
		Check("password2", "Passwords do not match", EqualsField("password")),
	}

	errs, err := rules.Validate(context.Background(), Form{
		"userName":  "",
		"email":     "a@x.com",
		"password":  "hunter22",
		"password2": "hunter23",
	})
	require.NoError(t, err)
	require.Len(t, errs, 3)
	assert.Equal(t, "Username is required", errs[0].Message)
	assert.Equal(t, "Username should at least be 2 characters long", errs[1].Message)
	assert.Equal(t, "password2", errs[2].Field)
	assert.Contains(t, errs.Error(), "Passwords do not match")
}

func TestValidatePassesCleanForm(t *testing.T) {
	rules := Rules{Check("genre", "Genre is required", Required())}
	errs, err := rules.Validate(context.Background(), Form{"genre": "Fantasy"})
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateAbortsOnTestError(t *testing.T) {
	boom := errors.New("db down")
	rules := Rules{
		Check("genre", "Genre already exist", Custom(func(context.Context, string, Form) (bool, error) {
			return false, boom
		})),
	}
	errs, err := rules.Validate(context.Background(), Form{"genre": "Fantasy"})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, errs)
}

func TestInvalid(t *testing.T) {
	errs := Invalid("pageNumber", "Page number should not be equal or less than 0")
	var target ValidationErrors
	assert.True(t, errors.As(error(errs), &target))
	assert.Equal(t, "pageNumber", target[0].Field)
}

func TestRedact(t *testing.T) {
	errs := ValidationErrors{
		{Field: "password", Message: "Password must have 8 characters", Value: "short"},
		{Field: "email", Message: "Email is not valid", Value: "nope"},
	}
	redacted := errs.Redact("password")
	assert.Empty(t, redacted[0].Value)
	assert.Equal(t, "nope", redacted[1].Value)
	assert.Equal(t, "short", errs[0].Value, "original left untouched")
}

func TestCauseIsReachable(t *testing.T) {
	dup := errors.New("page number already exists")
	rules := Rules{
		Check("chapterName", "Chapter name should not be empty", Required()),
		Check("pageNumber", "Page number already exists", Custom(func(context.Context, string, Form) (bool, error) {
			return false, nil
		})).WithCause(dup),
	}
	errs, err := rules.Validate(context.Background(), Form{"pageNumber": "1"})
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs, dup)
	assert.ErrorIs(t, Conflict("genre", "Genre already exist", dup), dup)
	assert.NotErrorIs(t, Invalid("genre", "Genre is required"), dup)
}
