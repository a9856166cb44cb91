package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pouriya/restcommander-sub000/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInput(t *testing.T) {
	constants := command.Input{
		"RESTCOMMANDER_CONFIG_SERVER_PORT": command.Integer(1995),
		"level":                            command.String("constant"),
	}

	testCases := []struct {
		name             string
		target           string
		body             string
		header           map[string]string
		expect           map[string]command.Value
		expectAbsent     []string
		expectStatistics bool
		expectErr        bool
	}{
		{
			name:   "constants only",
			target: "/api/run/x",
			expect: map[string]command.Value{
				"RESTCOMMANDER_CONFIG_SERVER_PORT": command.Integer(1995),
				"level":                            command.String("constant"),
				OptionClientIP:                     command.String("192.0.2.1"),
				OptionClientPort:                   command.Integer(1234),
				"RESTCOMMANDER_HEADER_HOST":        command.String("example.com"),
			},
		},
		{
			name:   "body overrides constants",
			target: "/api/run/x",
			body:   `{"level": "body", "ratio": 0.5, "flag": true}`,
			expect: map[string]command.Value{
				"level": command.String("body"),
				"ratio": command.Float(0.5),
				"flag":  command.Bool(true),
			},
		},
		{
			name:   "query overrides body",
			target: "/api/run/x?level=query&n=3",
			body:   `{"level": "body"}`,
			expect: map[string]command.Value{
				"level": command.String("query"),
				"n":     command.Integer(3),
			},
		},
		{
			name:   "header overrides query",
			target: "/api/run/x?level=query",
			header: map[string]string{"X-Level": "header", "X-Dry-Run": "true"},
			expect: map[string]command.Value{
				"level":   command.String("header"),
				"dry_run": command.Bool(true),
			},
		},
		{
			name:   "special headers",
			target: "/api/run/x",
			header: map[string]string{"User-Agent": "curl/8", "Content-Type": "application/json", "Accept": "*/*"},
			expect: map[string]command.Value{
				"RESTCOMMANDER_HEADER_USER_AGENT":   command.String("curl/8"),
				"RESTCOMMANDER_HEADER_CONTENT_TYPE": command.String("application/json"),
			},
			expectAbsent: []string{"RESTCOMMANDER_HEADER_ACCEPT", "accept"},
		},
		{
			name:             "statistics header is not an option",
			target:           "/api/run/x",
			header:           map[string]string{"X-Restcommander-Statistics": "true", "X-Requested-With": "XMLHttpRequest"},
			expectAbsent:     []string{"restcommander_statistics", "requested_with"},
			expectStatistics: true,
		},
		{
			name:             "structured body",
			target:           "/api/run/x",
			body:             `{"options": {"level": "nested"}, "statistics": true}`,
			expect:           map[string]command.Value{"level": command.String("nested")},
			expectAbsent:     []string{"options", "statistics"},
			expectStatistics: true,
		},
		{
			name:   "client address cannot be overridden",
			target: "/api/run/x?RESTCOMMANDER_CLIENT_IP=1.1.1.1",
			expect: map[string]command.Value{OptionClientIP: command.String("192.0.2.1")},
		},
		{name: "nested option value", target: "/api/run/x", body: `{"list": [1, 2]}`, expectErr: true},
		{name: "body is not an object", target: "/api/run/x", body: `"text"`, expectErr: true},
		{name: "invalid statistics header", target: "/api/run/x", header: map[string]string{"X-Restcommander-Statistics": "maybe"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://example.com"+tc.target, strings.NewReader(tc.body))
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			actual, err := ExtractInput(req, constants)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for name, value := range tc.expect {
				assert.Equal(t, value, actual.Input[name], name)
			}
			for _, name := range tc.expectAbsent {
				assert.NotContains(t, actual.Input, name)
			}
			assert.Equal(t, tc.expectStatistics, actual.Statistics)
		})
	}
	assert.Len(t, constants, 2)
}
