package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hyp3rd/ewrap"
	"github.com/spf13/cast"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/constants"
	"github.com/hyp3rd/lndl/pkg/formatter"
	"github.com/hyp3rd/lndl/pkg/outstream"
)

// Report summarises one ReadConfig call.
type Report struct {
	// Resolved lists the names built from the document, per section.
	Resolved map[constants.Section][]string
	// Failures holds the definitions of the document that failed, per section.
	Failures map[constants.Section]map[string]Failure
}

func newReport() Report {
	report := Report{
		Resolved: make(map[constants.Section][]string, len(constants.Sections())),
		Failures: make(map[constants.Section]map[string]Failure, len(constants.Sections())),
	}

	for _, section := range constants.Sections() {
		report.Failures[section] = map[string]Failure{}
	}

	return report
}

// OK reports whether every definition resolved.
func (r Report) OK() bool {
	for _, failures := range r.Failures {
		if len(failures) > 0 {
			return false
		}
	}

	return true
}

// Err returns the failures as one error, nil when there are none.
func (r Report) Err() error {
	errorGroup := ewrap.NewErrorGroup()

	for _, section := range constants.Sections() {
		failures := r.Failures[section]
		for _, name := range slices.Sorted(maps.Keys(failures)) {
			errorGroup.Add(ewrap.Wrap(ErrUnavailable, failures[name].Reason).
				WithMetadata("section", section.String()).
				WithMetadata("name", name))
		}
	}

	if errorGroup.HasErrors() {
		return errorGroup
	}

	return nil
}

// ReadConfig resolves doc into s: formatters first, then outputs, then
// loggers, each layer merged before the next one starts. Failures never stop
// the other definitions from loading; they are recorded in s and returned in
// the report. doc itself is not modified.
func (s *Storage) ReadConfig(doc Document) Report {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	doc = doc.Clone()
	report := newReport()

	s.resolveFormatters(doc.Formatters, &report)
	s.resolveOutputs(doc.Outputs, &report)
	s.resolveLoggers(doc.Loggers, &report)

	return report
}

// ReadMap decodes raw with DocumentFromMap and resolves it.
func (s *Storage) ReadMap(raw map[string]any) (Report, error) {
	doc, err := DocumentFromMap(raw)
	if err != nil {
		return Report{}, err
	}

	return s.ReadConfig(doc), nil
}

// layer collects the outcome of one section before it is merged.
type layer struct {
	section constants.Section
	storage *Storage
	staged  *Storage
	report  *Report
}

func (s *Storage) newLayer(section constants.Section, report *Report) *layer {
	return &layer{section: section, storage: s, staged: s.stage(), report: report}
}

func (l *layer) fail(name string, def Definition, format string, args ...any) {
	reason := fmt.Sprintf(format, args...)

	l.staged.failures[l.section][name] = Failure{Definition: def, Reason: reason}
	l.report.Failures[l.section][name] = Failure{Definition: def, Reason: reason}
	l.storage.diag.Errorf("%s %q: %s, ignored", sectionNoun(l.section), name, reason)
}

func (l *layer) resolved(name string) {
	l.report.Resolved[l.section] = append(l.report.Resolved[l.section], name)
}

func (l *layer) commit() {
	slices.Sort(l.report.Resolved[l.section])
	l.storage.Merge(l.staged)
}

func (s *Storage) resolveFormatters(section Section, report *Report) {
	l := s.newLayer(constants.SectionFormatter, report)
	defer l.commit()

	work := make(Section, len(section))
	graph := make(map[string][]string, len(section))

	for _, name := range section.Names() {
		def := section[name]

		subs, err := nameList(def, constants.KeySubFormatter)
		if err != nil {
			l.fail(name, def, "invalid %s: %v", constants.KeySubFormatter, err)

			continue
		}

		work[name] = def
		graph[name] = subs
	}

	cycles := FindCycles(graph)
	if len(cycles) > 0 {
		s.diag.Errorf("formatters with cyclic %s references: %s", constants.KeySubFormatter, strings.Join(cycles, ", "))
	}

	for _, name := range cycles {
		l.fail(name, work[name], "cyclic %s reference", constants.KeySubFormatter)
		delete(work, name)
	}

	for pass := 0; len(work) > 0 && pass < lndl.MaxResolvePasses; pass++ {
		progress := false

		for _, name := range work.Names() {
			if l.buildFormatter(name, work[name], graph[name], work) {
				delete(work, name)

				progress = true
			}
		}

		if !progress {
			break
		}
	}

	if len(work) == 0 {
		return
	}

	left := work.Names()
	s.diag.Errorf("formatters left unresolved: %s", strings.Join(left, ", "))

	for _, name := range left {
		l.fail(name, work[name], "unresolved %s reference", constants.KeySubFormatter)
	}
}

// buildFormatter tries to construct one formatter. It returns false when a
// sub-formatter is not built yet and the definition should be retried.
// Names still pending in work shadow anything the storage already holds.
func (l *layer) buildFormatter(name string, def Definition, subs []string, work Section) bool {
	class, ok := l.class(name, def)
	if !ok {
		return true
	}

	builder, ok := l.storage.registry.Formatter(class)
	if !ok {
		l.fail(name, def, "unknown class %q", class)

		return true
	}

	stages := make([]formatter.Stage, 0, len(subs))

	for _, sub := range subs {
		if f, ok := l.staged.formatters[sub]; ok {
			stages = append(stages, f)

			continue
		}

		if _, failed := l.staged.failures[constants.SectionFormatter][sub]; failed {
			l.fail(name, def, "requires failed formatter %q", sub)

			return true
		}

		if _, pending := work[sub]; pending {
			return false
		}

		f, err := l.storage.Formatter(sub)

		switch {
		case err == nil:
			stages = append(stages, f)
		case errors.Is(err, ErrUnavailable):
			l.fail(name, def, "requires failed formatter %q", sub)

			return true
		default:
			return false
		}
	}

	f, err := builder(def.without(constants.KeyClass, constants.KeySubFormatter), stages...)
	if err != nil {
		l.fail(name, def, "construction failed: %v", err)

		return true
	}

	l.staged.formatters[name] = f
	l.resolved(name)

	return true
}

func (s *Storage) resolveOutputs(section Section, report *Report) {
	l := s.newLayer(constants.SectionOutstream, report)
	defer l.commit()

	for _, name := range section.Names() {
		l.buildOutput(name, section[name])
	}
}

func (l *layer) buildOutput(name string, def Definition) {
	class, ok := l.class(name, def)
	if !ok {
		return
	}

	builder, ok := l.storage.registry.Output(class)
	if !ok {
		l.fail(name, def, "unknown class %q", class)

		return
	}

	deps := outstream.Dependencies{Hooks: l.storage.hooks}

	if raw, present := def.lookup(constants.KeyFormatter); present {
		ref, err := cast.ToStringE(raw)
		if err != nil {
			l.fail(name, def, "invalid %s: %v", constants.KeyFormatter, err)

			return
		}

		f, err := l.storage.Formatter(ref)

		switch {
		case err == nil:
			deps.Formatter = f
		case errors.Is(err, ErrUnavailable):
			l.fail(name, def, "requires failed formatter %q", ref)

			return
		default:
			l.fail(name, def, "formatter %q not found", ref)

			return
		}
	}

	level, err := l.level(name, def)
	if err != nil {
		l.fail(name, def, "%v", err)

		return
	}

	deps.Level = level

	sink, err := builder(name, def.without(
		constants.KeyClass,
		constants.KeyFormatter,
		constants.KeyLevel,
		constants.KeyLevelName,
	), deps)
	if err != nil {
		l.fail(name, def, "construction failed: %v", err)

		return
	}

	l.staged.outputs[name] = sink
	l.resolved(name)
}

type loggerParams struct {
	Enable        *bool   `mapstructure:"enable"`
	Tag           *string `mapstructure:"tag"`
	CaptureCaller *bool   `mapstructure:"capture_caller"`
}

func (s *Storage) resolveLoggers(section Section, report *Report) {
	l := s.newLayer(constants.SectionLogger, report)
	defer l.commit()

	for _, name := range section.Names() {
		l.buildLogger(name, section[name])
	}
}

func (l *layer) buildLogger(name string, def Definition) {
	refs, err := nameList(def, constants.KeyOutputs)
	if err != nil {
		l.fail(name, def, "invalid %s: %v", constants.KeyOutputs, err)

		return
	}

	sinks := make([]lndl.Sink, 0, len(refs))

	for _, ref := range refs {
		sink, err := l.storage.Output(ref)

		switch {
		case err == nil:
			sinks = append(sinks, sink)
		case errors.Is(err, ErrUnavailable):
			l.fail(name, def, "requires failed output %q", ref)

			return
		default:
			l.fail(name, def, "output %q not found", ref)

			return
		}
	}

	level, err := l.level(name, def)
	if err != nil {
		l.fail(name, def, "%v", err)

		return
	}

	var params loggerParams

	err = formatter.DecodeParams(def.without(constants.KeyOutputs, constants.KeyLevel, constants.KeyLevelName), &params)
	if err != nil {
		l.fail(name, def, "construction failed: %v", err)

		return
	}

	if _, present := def.lookup(constants.KeyOutputs); !present {
		console := outstream.NewStdioOutputStream(outstream.StdioConfig{Name: name, Level: level})
		l.staged.retired = append(l.staged.retired, console)
		sinks = append(sinks, console)
	}

	opts := []lndl.LoggerOption{lndl.WithLevel(level), lndl.WithOutputs(sinks...)}

	if params.Enable != nil {
		opts = append(opts, lndl.WithEnabled(*params.Enable))
	}

	if params.Tag != nil {
		opts = append(opts, lndl.WithDefaultTag(*params.Tag))
	}

	if params.CaptureCaller != nil {
		opts = append(opts, lndl.WithCallerCapture(*params.CaptureCaller))
	}

	l.staged.loggers[name] = lndl.NewLogger(name, opts...)
	l.resolved(name)
}

// class returns the class of def, failing the definition when it has none.
func (l *layer) class(name string, def Definition) (string, bool) {
	raw, present := def.lookup(constants.KeyClass)
	if !present {
		l.fail(name, def, "missing %s", constants.KeyClass)

		return "", false
	}

	class, err := cast.ToStringE(raw)
	if err != nil || strings.TrimSpace(class) == "" {
		l.fail(name, def, "invalid %s %v", constants.KeyClass, raw)

		return "", false
	}

	return strings.TrimSpace(class), true
}

// level reads level and level_name from def. level_name wins when both are
// set; neither means the default level.
func (l *layer) level(name string, def Definition) (lndl.Level, error) {
	rawLevel, hasLevel := def.lookup(constants.KeyLevel)
	rawName, hasName := def.lookup(constants.KeyLevelName)

	switch {
	case hasName:
		if hasLevel {
			l.storage.diag.Warnf("%s %q: both %s and %s set, using %s",
				sectionNoun(l.section), name, constants.KeyLevel, constants.KeyLevelName, constants.KeyLevelName)
		}

		levelName, err := cast.ToStringE(rawName)
		if err != nil {
			return 0, ewrap.Wrap(err, "invalid level_name")
		}

		return lndl.DefaultLevels().Parse(levelName)
	case hasLevel:
		return parseLevelValue(rawLevel)
	default:
		l.storage.diag.Finef("%s %q: no %s or %s, using %s",
			sectionNoun(l.section), name, constants.KeyLevel, constants.KeyLevelName, lndl.DefaultLevel)

		return lndl.DefaultLevel, nil
	}
}

func parseLevelValue(raw any) (lndl.Level, error) {
	if text, ok := raw.(string); ok {
		return lndl.ParseLevel(text)
	}

	value, err := cast.ToIntE(raw)
	if err != nil {
		return 0, ewrap.Wrap(err, "invalid level").WithMetadata("level", raw)
	}

	if value < 0 {
		return 0, ewrap.New("level cannot be negative").WithMetadata("level", value)
	}

	return lndl.Level(value), nil
}

// nameList reads key from def as a single name or a list of names.
func nameList(def Definition, key string) ([]string, error) {
	raw, present := def.lookup(key)
	if !present {
		return nil, nil
	}

	if name, ok := raw.(string); ok {
		return []string{name}, nil
	}

	names, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, ewrap.Wrap(err, "expected a name or a list of names")
	}

	return names, nil
}

func sectionNoun(section constants.Section) string {
	switch section {
	case constants.SectionFormatter:
		return "formatter"
	case constants.SectionOutstream:
		return "output"
	default:
		return "logger"
	}
}
