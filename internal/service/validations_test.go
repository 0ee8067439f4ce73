package service_test

import (
	"testing"

	errorvalues "github.com/limbo/placebetween/internal/error_values"
	"github.com/limbo/placebetween/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	testCases := []struct {
		Desc  string
		Req   service.RangeRequest
		Valid bool
	}{
		{Desc: "valid", Req: service.RangeRequest{Start: "2024-01-01", End: "2024-01-31"}, Valid: true},
		{Desc: "single day", Req: service.RangeRequest{Start: "2024-01-01", End: "2024-01-01"}, Valid: true},
		{Desc: "missing start", Req: service.RangeRequest{End: "2024-01-01"}},
		{Desc: "missing end", Req: service.RangeRequest{Start: "2024-01-01"}},
		{Desc: "bad format", Req: service.RangeRequest{Start: "01/01/2024", End: "2024-01-02"}},
		{Desc: "impossible date", Req: service.RangeRequest{Start: "2024-02-30", End: "2024-03-02"}},
		{Desc: "start after end", Req: service.RangeRequest{Start: "2024-01-05", End: "2024-01-01"}},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			start, end, err := service.ParseRange(&tc.Req)
			if !tc.Valid {
				assert.ErrorIs(t, err, errorvalues.ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Req.Start, start.Format("2006-01-02"))
			assert.Equal(t, tc.Req.End, end.Format("2006-01-02"))
		})
	}
}
