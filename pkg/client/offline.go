package client

import (
	"encoding/json"
	"strings"
)

// offlineStubs are served by endpoint prefix once the client is offline.
// Order matters: the first matching prefix wins.
var offlineStubs = []struct {
	prefix string
	body   string
}{
	{"/dashboard/stats", `{"total_customers":0,"total_bills":0,"total_tailors":0,"total_jobs":0,"pending_jobs":0,"today_bills":0,"total_revenue":0}`},
	{"/customers", `{"customers":[]}`},
	{"/bills", `{"bills":[]}`},
	{"/tailors", `{"tailors":[]}`},
	{"/jobs", `{"jobs":[]}`},
	{"/settings/upi", `{"upi_id":"startailors@paytm","business_name":"STAR TAILORS"}`},
	{"/settings/business", `{"business_name":"STAR TAILORS","address":"","phone":"","email":""}`},
}

func offlineFallback(endpoint string) []byte {
	for _, s := range offlineStubs {
		if strings.HasPrefix(endpoint, s.prefix) {
			return []byte(s.body)
		}
	}
	return []byte(`{}`)
}

func decodeFallback(endpoint string, out any) error {
	data := offlineFallback(endpoint)
	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	// stubs are static JSON, a mismatch only means the caller's shape differs
	_ = json.Unmarshal(data, out)
	return nil
}
