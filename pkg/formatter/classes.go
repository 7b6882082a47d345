package formatter

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl"
)

// Built-in formatter classes.
const (
	ClassBase         = "BaseFormatter"
	ClassMain         = "MainFormatter"
	ClassStd          = "StdFormatter"
	ClassTime         = "TimeFormatter"
	ClassLevel        = "LevelFormatter"
	ClassTrace        = "TraceFormatter"
	ClassLevelColor   = "LevelColorFormatter"
	ClassLoggerColor  = "LoggerColorFormatter"
	ClassTimeColor    = "TimeColorFormatter"
	ClassTraceColor   = "TraceColorFormatter"
	ClassMessageColor = "MessageColorFormatter"
)

// ErrUnknownClass is returned by Build for a class that is not built in.
var ErrUnknownClass = ewrap.New("unknown formatter class")

// Builder constructs a formatter of one class from its configuration
// parameters. subs are the resolved sub-formatters; they run ahead of the
// class's own stages.
type Builder func(params map[string]any, subs ...Stage) (*Formatter, error)

type templateParams struct {
	Template *string `mapstructure:"template"`
}

type timeParams struct {
	TimeFormat string `mapstructure:"time_format"`
	Msec       *bool  `mapstructure:"msec"`
	UTC        bool   `mapstructure:"utc"`
}

type levelParams struct {
	RoundUp *bool `mapstructure:"round_up"`
}

type colorParams struct {
	Colors map[string]string `mapstructure:"colors"`
}

type baseParams struct {
	templateParams `mapstructure:",squash"`
}

type timeClassParams struct {
	templateParams `mapstructure:",squash"`
	timeParams     `mapstructure:",squash"`
}

type levelClassParams struct {
	templateParams `mapstructure:",squash"`
	levelParams    `mapstructure:",squash"`
}

type colorClassParams struct {
	templateParams `mapstructure:",squash"`
	colorParams    `mapstructure:",squash"`
}

type mainClassParams struct {
	templateParams `mapstructure:",squash"`
	timeParams     `mapstructure:",squash"`
	levelParams    `mapstructure:",squash"`
	colorParams    `mapstructure:",squash"`

	EnableColor *bool `mapstructure:"enable_color"`
}

// Builtins returns a fresh map of the built-in classes.
func Builtins() map[string]Builder {
	return map[string]Builder{
		ClassBase:         buildBase,
		ClassMain:         buildMain(ClassMain),
		ClassStd:          buildMain(ClassStd),
		ClassTime:         buildTime,
		ClassLevel:        buildLevel,
		ClassTrace:        buildTrace,
		ClassLevelColor:   buildColor(ClassLevelColor, func(p Palette) Stage { return &LevelColorStage{Colors: p} }),
		ClassLoggerColor:  buildColor(ClassLoggerColor, func(p Palette) Stage { return &LoggerColorStage{Colors: p} }),
		ClassTimeColor:    buildColor(ClassTimeColor, func(p Palette) Stage { return &TimeColorStage{Colors: p} }),
		ClassTraceColor:   buildColor(ClassTraceColor, func(p Palette) Stage { return &TraceColorStage{Colors: p} }),
		ClassMessageColor: buildColor(ClassMessageColor, func(p Palette) Stage { return &MessageColorStage{Colors: p} }),
	}
}

// Build constructs a built-in class.
func Build(class string, params map[string]any, subs ...Stage) (*Formatter, error) {
	builder, ok := Builtins()[class]
	if !ok {
		return nil, ewrap.Wrap(ErrUnknownClass, "building formatter").WithMetadata("class", class)
	}

	return builder(params, subs...)
}

// Default returns a MainFormatter with default parameters.
func Default() *Formatter {
	f, err := buildMain(ClassMain)(nil)
	if err != nil {
		panic(err)
	}

	return f
}

// DecodeParams decodes params into out, rejecting keys out does not declare.
// Scalars are converted leniently, so "true" decodes into a bool.
func DecodeParams(params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return ewrap.Wrap(err, "creating parameter decoder")
	}

	err = decoder.Decode(params)
	if err != nil {
		return ewrap.Wrap(err, "decoding parameters")
	}

	return nil
}

func buildBase(params map[string]any, subs ...Stage) (*Formatter, error) {
	var p baseParams

	err := DecodeParams(params, &p)
	if err != nil {
		return nil, ewrap.Wrap(err, "building formatter").WithMetadata("class", ClassBase)
	}

	return assemble(ClassBase, p.templateParams, subs), nil
}

func buildMain(class string) Builder {
	return func(params map[string]any, subs ...Stage) (*Formatter, error) {
		var p mainClassParams

		err := DecodeParams(params, &p)
		if err != nil {
			return nil, ewrap.Wrap(err, "building formatter").WithMetadata("class", class)
		}

		palette, err := p.palette()
		if err != nil {
			return nil, ewrap.Wrap(err, "building formatter").WithMetadata("class", class)
		}

		own := []Stage{p.timeStage(), p.levelStage(), TraceStage{}}
		if p.EnableColor == nil || *p.EnableColor {
			own = append(own, ColorStages(palette)...)
		}

		return assemble(class, p.templateParams, subs, own...), nil
	}
}

func buildTime(params map[string]any, subs ...Stage) (*Formatter, error) {
	var p timeClassParams

	err := DecodeParams(params, &p)
	if err != nil {
		return nil, ewrap.Wrap(err, "building formatter").WithMetadata("class", ClassTime)
	}

	return assemble(ClassTime, p.templateParams, subs, p.timeStage()), nil
}

func buildLevel(params map[string]any, subs ...Stage) (*Formatter, error) {
	var p levelClassParams

	err := DecodeParams(params, &p)
	if err != nil {
		return nil, ewrap.Wrap(err, "building formatter").WithMetadata("class", ClassLevel)
	}

	return assemble(ClassLevel, p.templateParams, subs, p.levelStage()), nil
}

func buildTrace(params map[string]any, subs ...Stage) (*Formatter, error) {
	var p baseParams

	err := DecodeParams(params, &p)
	if err != nil {
		return nil, ewrap.Wrap(err, "building formatter").WithMetadata("class", ClassTrace)
	}

	return assemble(ClassTrace, p.templateParams, subs, TraceStage{}), nil
}

func buildColor(class string, stage func(Palette) Stage) Builder {
	return func(params map[string]any, subs ...Stage) (*Formatter, error) {
		var p colorClassParams

		err := DecodeParams(params, &p)
		if err != nil {
			return nil, ewrap.Wrap(err, "building formatter").WithMetadata("class", class)
		}

		palette, err := p.palette()
		if err != nil {
			return nil, ewrap.Wrap(err, "building formatter").WithMetadata("class", class)
		}

		return assemble(class, p.templateParams, subs, stage(palette)), nil
	}
}

func assemble(class string, tp templateParams, subs []Stage, own ...Stage) *Formatter {
	opts := []Option{WithStages(subs...), WithStages(own...)}
	if tp.Template != nil {
		opts = append(opts, WithTemplate(*tp.Template))
	}

	return New(class, opts...)
}

func (p timeParams) timeStage() *TimeStage {
	stage := NewTimeStage()
	if p.TimeFormat != "" {
		stage.Layout = p.TimeFormat
	}

	if p.Msec != nil {
		stage.Millis = *p.Msec
	}

	stage.UTC = p.UTC

	return stage
}

func (p levelParams) levelStage() *LevelStage {
	stage := NewLevelStage()
	if p.RoundUp != nil && !*p.RoundUp {
		stage.Rounding = lndl.RoundDown
	}

	return stage
}

// palette builds the colour table. Keys are level names or numbers; values are
// raw escape sequences or one of the colour names known to colorNames.
// Configured entries override the defaults.
func (p colorParams) palette() (Palette, error) {
	if len(p.Colors) == 0 {
		return nil, nil
	}

	palette := Palette(lndl.DefaultLevelColors())

	for key, value := range p.Colors {
		level, err := lndl.ParseLevel(key)
		if err != nil {
			return nil, ewrap.Wrap(err, "invalid colour level").WithMetadata("level", key)
		}

		if named, ok := colorNames()[strings.ToLower(value)]; ok {
			value = named
		}

		palette[level] = value
	}

	return palette, nil
}

func colorNames() map[string]string {
	return map[string]string{
		"":               "",
		"none":           "",
		"black":          lndl.Black,
		"red":            lndl.Red,
		"green":          lndl.Green,
		"yellow":         lndl.Yellow,
		"blue":           lndl.Blue,
		"magenta":        lndl.Magenta,
		"cyan":           lndl.Cyan,
		"white":          lndl.White,
		"bold_red":       lndl.BoldRed,
		"bold_yellow":    lndl.BoldYellow,
		"red_background": lndl.RedBackground,
	}
}
