package collection

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nmorel/altered-companion/internal/altered"
)

func TestToggleWantlist(t *testing.T) {
	tests := []struct {
		name       string
		inWantlist bool
		wantMethod string
		wantPath   string
		wantResult bool
	}{
		{
			name:       "adds when absent",
			inWantlist: false,
			wantMethod: http.MethodPost,
			wantPath:   "/card_user_list_cards",
			wantResult: true,
		},
		{
			name:       "removes when present",
			inWantlist: true,
			wantMethod: http.MethodDelete,
			wantPath:   "/card_user_lists/wantlist/cards/",
			wantResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mutation *http.Request

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodGet {
					w.Header().Set("Content-Type", "application/json")
					fmt.Fprintf(w, `{"reference":"ALT_CORE_B_AX_01_C","inMyWantlist":%v}`, tt.inWantlist)
					return
				}
				mutation = r.Clone(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := altered.NewClient(server.URL)
			got, err := ToggleWantlist(context.Background(), client, "Bearer test", "ALT_CORE_B_AX_01_C")
			if err != nil {
				t.Fatalf("ToggleWantlist: %v", err)
			}
			if got != tt.wantResult {
				t.Errorf("result = %v, want %v", got, tt.wantResult)
			}

			if mutation == nil {
				t.Fatal("no mutation request issued")
			}
			if mutation.Method != tt.wantMethod {
				t.Errorf("method = %s, want %s", mutation.Method, tt.wantMethod)
			}
			if !strings.HasPrefix(mutation.URL.Path, tt.wantPath) {
				t.Errorf("path = %s, want prefix %s", mutation.URL.Path, tt.wantPath)
			}
		})
	}
}
