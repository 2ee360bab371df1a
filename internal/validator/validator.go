package validator

import (
	"context"
	"fmt"

	"github.com/aretw0/sideeye/internal/dto"
	"github.com/aretw0/sideeye/pkg/ports"
)

// Report collects the outcome of a validation pass.
// Errors would make the trial build fail; warnings flag data the build accepts but that
// is probably wrong (zero or negative durations, overlapping fixations).
type Report struct {
	Errors   []error
	Warnings []error
}

// Err returns the errors as an *AggregateError, or nil when there are none.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &AggregateError{Errors: r.Errors}
}

func (r *Report) errorf(key, reason string, value any) {
	r.Errors = append(r.Errors, &ValidationError{Key: key, Reason: reason, Value: value})
}

func (r *Report) warnf(key, reason string, value any) {
	r.Warnings = append(r.Warnings, &ValidationError{Key: key, Reason: reason, Value: value})
}

func (r *Report) merge(other *Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// CheckFile validates every trial of a trial file, and the inline item catalogue.
func CheckFile(f *dto.TrialFile) *Report {
	r := CheckInlineItems(f)
	for i, in := range f.Trials {
		r.merge(CheckTrial(in, TrialPath(i)))
	}
	return r
}

// CheckInlineItems validates only the items carried by a trial file.
func CheckInlineItems(f *dto.TrialFile) *Report {
	r := &Report{}
	for i, item := range f.Items {
		if item == nil {
			r.errorf(fmt.Sprintf("items[%d]", i), "item is empty", nil)
			continue
		}
		if err := item.Validate(); err != nil {
			r.errorf(fmt.Sprintf("items[%d]", i), err.Error(), nil)
		}
	}
	return r
}

// TrialPath is the field path prefix of the i-th trial of a file.
func TrialPath(i int) string {
	return fmt.Sprintf("trials[%d]", i)
}

// CheckTrial validates one trial input. prefix is prepended to the field paths.
func CheckTrial(in dto.TrialInput, prefix string) *Report {
	r := &Report{}
	key := func(field string) string {
		if prefix == "" {
			return field
		}
		return prefix + "." + field
	}

	if in.Index < 0 {
		r.errorf(key("index"), "index must be non-negative", in.Index)
	}
	if in.Time != nil && *in.Time < 0 {
		r.errorf(key("time"), "time must be non-negative", *in.Time)
	}
	if in.Item == nil && in.ItemNumber == "" {
		r.errorf(key("item"), "trial must have an associated item", nil)
	}
	if in.Item != nil {
		if err := in.Item.Validate(); err != nil {
			r.errorf(key("item"), err.Error(), nil)
		}
	}

	usable := 0
	for i, f := range in.Fixations {
		fk := func(field string) string { return key(fmt.Sprintf("fixations[%d].%s", i, field)) }

		if f.End < f.Start {
			r.warnf(fk("end"), "fixation ends before it starts", f.End)
		}
		if f.Duration != nil && *f.Duration != f.End-f.Start {
			r.warnf(fk("duration"), fmt.Sprintf("duration differs from end - start (%d)", f.End-f.Start), *f.Duration)
		}
		if (f.Char == nil) != (f.Line == nil) {
			r.warnf(fk("char"), "fixation is only partially localized", nil)
		}
		if !f.Excluded {
			usable++
		}
		if i == 0 {
			continue
		}
		prev := in.Fixations[i-1]
		if f.Start < prev.Start {
			r.warnf(fk("start"), "fixation starts before the previous one", f.Start)
		} else if f.Start < prev.End {
			r.warnf(fk("start"), "fixation overlaps the previous one", f.Start)
		}
	}
	if len(in.Fixations) > 0 && usable == 0 {
		r.warnf(key("fixations"), "every fixation is excluded; no saccades can be built", nil)
	}
	return r
}

// CheckItems loads every item of the catalogue and validates its regions.
// Load failures and invalid items are errors; overlapping regions are warnings.
func CheckItems(ctx context.Context, loader ports.ItemLoader) *Report {
	r := &Report{}
	numbers, err := loader.ListItems(ctx)
	if err != nil {
		r.Errors = append(r.Errors, err)
		return r
	}
	for _, n := range numbers {
		item, err := loader.GetItem(ctx, n)
		if err != nil {
			r.errorf("items."+n, err.Error(), nil)
			continue
		}
		if err := item.Validate(); err != nil {
			r.errorf("items."+n, err.Error(), nil)
			continue
		}
		for i := 1; i < len(item.Regions); i++ {
			if item.Regions[i].Start.Less(item.Regions[i-1].End) {
				r.warnf(fmt.Sprintf("items.%s.regions[%d]", n, i), "region overlaps the previous one", item.Regions[i].Start)
			}
		}
	}
	return r
}
