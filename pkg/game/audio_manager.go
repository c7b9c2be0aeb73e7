package game

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// SampleRate 音频上下文采样率
const SampleRate = 48000

// 合成点击音效参数
const (
	popDuration  = 0.08  // 秒
	popStartFreq = 880.0 // Hz
	popEndFreq   = 440.0 // Hz
)

// AudioManager 音频管理器
// 负责点击音效的加载与播放，音量和开关从 SettingsManager 读取
type AudioManager struct {
	context         *audio.Context
	settingsManager *SettingsManager // 可为 nil
	popPCM          []byte           // 16 位小端立体声 PCM
}

// NewAudioManager 创建音频管理器
//
// soundPath 为空或加载失败时使用合成的音效。
// context 为 nil 时所有播放调用都是空操作（测试和无音频设备环境）。
func NewAudioManager(context *audio.Context, sm *SettingsManager, soundPath string) *AudioManager {
	am := &AudioManager{
		context:         context,
		settingsManager: sm,
	}

	if soundPath != "" {
		pcm, err := loadSoundPCM(soundPath, SampleRate)
		if err != nil {
			log.Printf("[AudioManager] Warning: %v (using synthesized pop)", err)
		} else {
			am.popPCM = pcm
		}
	}
	if am.popPCM == nil {
		am.popPCM = synthesizePop(SampleRate)
	}

	return am
}

// PlayPop 播放一次点击音效
// 返回：是否实际播放
func (am *AudioManager) PlayPop() bool {
	if am.context == nil {
		return false
	}
	if am.settingsManager != nil && !am.settingsManager.GetSettings().SoundEnabled {
		return false
	}

	// 每次新建播放器，允许快速连续点击时音效重叠
	player := am.context.NewPlayerFromBytes(am.popPCM)
	player.SetVolume(am.soundVolume())
	player.Play()
	return true
}

func (am *AudioManager) soundVolume() float64 {
	if am.settingsManager == nil {
		return DefaultSettings().SoundVolume
	}
	return am.settingsManager.GetSettings().SoundVolume
}

// loadSoundPCM 读取并解码音效文件（.wav/.ogg/.mp3），重采样到 sampleRate
func loadSoundPCM(path string, sampleRate int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sound file %s: %w", path, err)
	}
	reader := bytes.NewReader(data)

	var stream io.Reader
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(sampleRate, reader)
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(sampleRate, reader)
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(sampleRate, reader)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .wav, .ogg, .mp3)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound %s: %w", path, err)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded sound %s: %w", path, err)
	}
	return pcm, nil
}

// synthesizePop 生成一段从 popStartFreq 滑到 popEndFreq、指数衰减的短音
func synthesizePop(sampleRate int) []byte {
	n := int(float64(sampleRate) * popDuration)
	buf := make([]byte, n*4)

	phase := 0.0
	for i := 0; i < n; i++ {
		progress := float64(i) / float64(n)
		freq := popStartFreq + (popEndFreq-popStartFreq)*progress
		phase += 2 * math.Pi * freq / float64(sampleRate)

		envelope := math.Exp(-5 * progress)
		v := int16(math.Sin(phase) * envelope * 0.6 * math.MaxInt16)

		binary.LittleEndian.PutUint16(buf[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(v))
	}
	return buf
}
