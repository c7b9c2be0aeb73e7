package game

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestSynthesizePop(t *testing.T) {
	pcm := synthesizePop(SampleRate)

	wantFrames := int(float64(SampleRate) * popDuration)
	if len(pcm) != wantFrames*4 {
		t.Fatalf("PCM length: got %d bytes, want %d", len(pcm), wantFrames*4)
	}

	peak := func(from, to int) int {
		max := 0
		for i := from; i < to; i++ {
			v := int(int16(binary.LittleEndian.Uint16(pcm[i*4:])))
			if v < 0 {
				v = -v
			}
			if v > max {
				max = v
			}
		}
		return max
	}

	head := peak(0, wantFrames/4)
	tail := peak(wantFrames*3/4, wantFrames)
	if head == 0 {
		t.Fatal("Pop should not be silent")
	}
	if tail >= head {
		t.Errorf("Pop should decay: head peak %d, tail peak %d", head, tail)
	}

	// 左右声道相同
	for i := 0; i < wantFrames; i++ {
		if binary.LittleEndian.Uint16(pcm[i*4:]) != binary.LittleEndian.Uint16(pcm[i*4+2:]) {
			t.Fatalf("Frame %d: channels differ", i)
		}
	}
}

func TestNewAudioManagerFallsBackToSynthesized(t *testing.T) {
	am := NewAudioManager(nil, nil, filepath.Join(t.TempDir(), "missing.wav"))
	if len(am.popPCM) == 0 {
		t.Fatal("Expected synthesized PCM when the sound file is missing")
	}
	if am.PlayPop() {
		t.Error("PlayPop without an audio context should be a no-op")
	}
}

func TestLoadSoundPCMErrors(t *testing.T) {
	dir := t.TempDir()

	unsupported := filepath.Join(dir, "pop.flac")
	if err := os.WriteFile(unsupported, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSoundPCM(unsupported, SampleRate); err == nil {
		t.Error("Expected error for unsupported format")
	}

	corrupted := filepath.Join(dir, "pop.wav")
	if err := os.WriteFile(corrupted, []byte("not a wav file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSoundPCM(corrupted, SampleRate); err == nil {
		t.Error("Expected error for corrupted wav")
	}
}

func TestSoundVolumeFromSettings(t *testing.T) {
	sm := NewSettingsManager(nil)
	sm.SetSoundVolume(0.3)

	am := NewAudioManager(nil, sm, "")
	if am.soundVolume() != 0.3 {
		t.Errorf("soundVolume: got %v, want 0.3", am.soundVolume())
	}

	if NewAudioManager(nil, nil, "").soundVolume() != DefaultSettings().SoundVolume {
		t.Error("Without settings the default volume should be used")
	}
}
