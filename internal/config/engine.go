package config

// CodecProfile is the resolved set of encoder arguments.
type CodecProfile struct {
	VideoCodec       string
	Preset           string
	CRF              int
	Threads          int
	AudioCodec       string
	AudioBitrateKbps int
	SampleRate       int
	Channels         int
	Loudnorm         bool
}

// EngineOptions is the explicit option set handed to the assembly engine.
type EngineOptions struct {
	MinClipDuration float64
	MusicFadeIn     float64
	MusicVolume     float64
	Width           int
	Height          int
	FPS             int
	Transition      float64
	FadeOut         float64
	CanvasColor     string
	Codec           CodecProfile
}

// EngineOptions flattens the configuration into engine options.
func (c Config) EngineOptions() EngineOptions {
	return EngineOptions{
		MinClipDuration: c.Assembly.MinClipDurationS,
		MusicFadeIn:     c.Music.FadeInS,
		MusicVolume:     c.Music.Volume,
		Width:           c.Video.Width,
		Height:          c.Video.Height,
		FPS:             c.Video.FPS,
		Transition:      c.Video.TransitionS,
		FadeOut:         c.Video.FadeOutS,
		CanvasColor:     c.Video.CanvasColor,
		Codec: CodecProfile{
			VideoCodec:       c.Encoding.VideoCodec,
			Preset:           c.Encoding.Preset,
			CRF:              c.Encoding.CRF,
			Threads:          c.Encoding.Threads,
			AudioCodec:       c.Audio.ACodec,
			AudioBitrateKbps: c.Audio.BitrateKbps,
			SampleRate:       c.Audio.SampleRate,
			Channels:         c.Audio.Channels,
			Loudnorm:         c.LoudnormEnabled(),
		},
	}
}
