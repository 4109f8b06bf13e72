package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bus.Servers[0] != "nats://localhost:4222" {
		t.Fatalf("expected default server, got %v", cfg.Bus.Servers)
	}
	if cfg.Transcriber.Mode != "auto" {
		t.Fatalf("expected auto transcriber mode, got %q", cfg.Transcriber.Mode)
	}
	if cfg.Capture.SampleRate != 16000 || cfg.Capture.Channels != 1 {
		t.Fatalf("unexpected capture preset: %d/%d", cfg.Capture.SampleRate, cfg.Capture.Channels)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOXD_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("VOXD_PERMISSION_MODE", "exec")
	t.Setenv("VOXD_PERMISSION_COMMAND", "mic-consent --prompt")
	t.Setenv("VOXD_CAPTURE_INPUT_DEVICE", "hw:1,0")
	t.Setenv("VOXD_CAPTURE_SAMPLE_RATE", "44100")
	t.Setenv("VOXD_TRANSCRIBER_MODE", "whisper")
	t.Setenv("VOXD_TRANSCRIBER_CREDENTIAL", "sk-test")
	t.Setenv("VOXD_TRANSCRIBER_TIMEOUT_MS", "15000")
	t.Setenv("VOXD_JOURNAL_RETENTION_MODE", "persistent")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if cfg.Permission.Mode != "exec" || cfg.Permission.Command != "mic-consent --prompt" {
		t.Fatalf("expected permission override, got %+v", cfg.Permission)
	}
	if cfg.Capture.InputDevice != "hw:1,0" {
		t.Fatalf("expected capture device override")
	}
	if cfg.Capture.SampleRate != 44100 {
		t.Fatalf("expected sample rate override, got %d", cfg.Capture.SampleRate)
	}
	if cfg.Transcriber.Mode != "whisper" || cfg.Transcriber.Credential != "sk-test" {
		t.Fatalf("expected transcriber override, got %+v", cfg.Transcriber)
	}
	if cfg.Transcriber.TimeoutMS != 15000 {
		t.Fatalf("expected timeout override, got %d", cfg.Transcriber.TimeoutMS)
	}
	if cfg.Journal.RetentionMode != "persistent" {
		t.Fatalf("expected journal retention override")
	}
}

func TestValidateRejectsRemoteWithoutCredential(t *testing.T) {
	t.Setenv("VOXD_TRANSCRIBER_MODE", "google")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for remote mode without credential")
	}
}

func TestValidateRejectsExecPermissionWithoutCommand(t *testing.T) {
	t.Setenv("VOXD_PERMISSION_MODE", "exec")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for exec permission without command")
	}
}
