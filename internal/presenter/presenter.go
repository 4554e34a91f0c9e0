// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter renders the state of a search for display.
package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/wneessen/go-moonphase"
	"golang.org/x/text/cases"

	"github.com/wneessen/city-weather/internal/config"
	"github.com/wneessen/city-weather/internal/search"
	"github.com/wneessen/city-weather/internal/weather"
)

// TemplateContext is the data the text template is executed with.
type TemplateContext struct {
	Query    string
	Location string

	Condition              string
	ConditionID            int
	ConditionIcon          string
	ConditionIconWithSpace string
	Conditions             []weather.Condition
	IsDaytime              bool

	Current  weather.TemperatureReading
	High     weather.TemperatureReading
	Low      weather.TemperatureReading
	TempUnit string

	Latitude      float64
	Longitude     float64
	SunriseTime   time.Time
	SunsetTime    time.Time
	MoonPhase     string
	MoonPhaseIcon string

	UpdateTime   time.Time
	ErrorMessage string
}

// Presenter renders search states with the configured templates. It is not safe for
// concurrent use.
type Presenter struct {
	text      *template.Template
	searching *template.Template
	prompt    *template.Template
	caser     cases.Caser
}

func New(conf *config.Config) (*Presenter, error) {
	if conf == nil {
		return nil, fmt.Errorf("config is required")
	}
	p := &Presenter{caser: newCaser()}

	var err error
	if p.text, err = p.parse("text", conf.Templates.Text); err != nil {
		return nil, err
	}
	if p.searching, err = p.parse("searching", conf.Templates.Searching); err != nil {
		return nil, err
	}
	if p.prompt, err = p.parse("prompt", conf.Templates.Prompt); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Presenter) parse(name, text string) (*template.Template, error) {
	tpl, err := template.New(name).Funcs(p.templateFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	return tpl, nil
}

// Render renders the given state. A result takes precedence over a running search, which
// takes precedence over an error message. Without any of those the prompt is rendered. If the
// last search failed, its error message is rendered below the stale result.
func (p *Presenter) Render(state search.State) (string, error) {
	ctx := p.BuildContext(state)
	switch {
	case state.Result != nil:
		text, err := execute(p.text, ctx)
		if err != nil || !state.LastFailed || state.ErrorMessage == "" {
			return text, err
		}
		return text + "\n" + state.ErrorMessage, nil
	case state.IsSearching:
		return execute(p.searching, ctx)
	case state.ErrorMessage != "":
		return state.ErrorMessage, nil
	default:
		return execute(p.prompt, ctx)
	}
}

// BuildContext fills the TemplateContext for the given state.
func (p *Presenter) BuildContext(state search.State) TemplateContext {
	ctx := TemplateContext{
		Query:        state.Query,
		ErrorMessage: state.ErrorMessage,
	}
	res := state.Result
	if res == nil {
		return ctx
	}

	primary := res.Primary()
	ctx.Location = res.Location
	ctx.Condition = primary.Description
	ctx.ConditionID = primary.ID
	ctx.ConditionIcon, ctx.IsDaytime = conditionIcon(primary.Icon)
	ctx.ConditionIconWithSpace = EmojiWithSpace(ctx.ConditionIcon)
	ctx.Conditions = res.Conditions
	ctx.Current = res.Temperature.Current
	ctx.High = res.Temperature.High
	ctx.Low = res.Temperature.Low
	ctx.TempUnit = res.Temperature.Current.Unit.Symbol()
	ctx.UpdateTime = res.FetchedAt

	now := res.FetchedAt
	if now.IsZero() {
		now = time.Now()
	}
	if !res.Coordinates.IsZero() {
		ctx.Latitude = res.Coordinates.Lat
		ctx.Longitude = res.Coordinates.Lon
		ctx.SunriseTime, ctx.SunsetTime = sunrise.SunriseSunset(res.Coordinates.Lat, res.Coordinates.Lon,
			now.Year(), now.Month(), now.Day())
	}
	ctx.MoonPhase = moonphase.New(now).PhaseName()
	ctx.MoonPhaseIcon = MoonPhaseIcon[ctx.MoonPhase]

	return ctx
}

func execute(tpl *template.Template, ctx TemplateContext) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := tpl.Execute(buf, ctx); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}
