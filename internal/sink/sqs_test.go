package sink

import "testing"

func TestRegionFromHost(t *testing.T) {
	cases := map[string]string{
		"sqs.us-east-1.amazonaws.com": "us-east-1",
		"sqs.eu-west-2.amazonaws.com": "eu-west-2",
		"localhost":                   "",
		"example.com":                 "",
	}
	for host, want := range cases {
		if got := regionFromHost(host); got != want {
			t.Errorf("regionFromHost(%q) = %q, want %q", host, got, want)
		}
	}
}
