package gcp

import (
	"strings"

	"google.golang.org/api/option"

	"github.com/yungbote/tutorbot-backend/internal/platform/envutil"
)

// ClientOptions turns a credentials setting into client options. The value
// is either inline service-account JSON or a path to it; empty means ADC.
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func CredentialsFromEnv() string {
	if v := envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""); v != "" {
		return v
	}
	return envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "")
}
