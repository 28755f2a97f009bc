package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	got := sanitizeKVs([]interface{}{"activity_id", int64(7), "Token", "abc", "dangling"})
	if len(got) != 5 {
		t.Fatalf("len: want=%d got=%d", 5, len(got))
	}
	if got[1] != int64(7) {
		t.Fatalf("activity_id: want=%d got=%v", 7, got[1])
	}
	if got[3] != "[REDACTED]" {
		t.Fatalf("token: want redacted got=%v", got[3])
	}
	if got[4] != "dangling" {
		t.Fatalf("dangling key: got=%v", got[4])
	}
}

func TestNopLoggerIsUsable(t *testing.T) {
	log := Nop().With("service", "test")
	log.Info("hello", "k", "v")
	log.Sync()
}
