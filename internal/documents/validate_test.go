package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haulbase/haulbase/internal/apperr"
)

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		maxSize     int64
		wantErr     bool
	}{
		{"pdf within limit", "application/pdf", 5 << 20, MaxDocumentSize, false},
		{"image within limit", "image/png", 1 << 20, MaxDocumentSize, false},
		{"csv allowed", "text/csv", 1024, MaxDocumentSize, false},
		{"executable rejected", "application/x-msdownload", 1024, MaxDocumentSize, true},
		{"unknown type rejected", "application/octet-stream", 1024, MaxDocumentSize, true},
		{"empty file rejected", "application/pdf", 0, MaxDocumentSize, true},
		{"oversized rejected", "application/pdf", 150 << 20, MaxDocumentSize, true},
		{"at the general cap", "application/pdf", MaxDocumentSize, MaxDocumentSize, false},
		{"verification cap is smaller", "application/pdf", 11 << 20, MaxVerificationSize, true},
		{"within verification cap", "application/pdf", 9 << 20, MaxVerificationSize, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.contentType, tt.size, tt.maxSize)
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.KindBadRequest), "want bad_request, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
