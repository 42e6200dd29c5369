// Package validation implements the business-rule validators run per step:
// generic per-field checks, pain-interview completeness and palpation-site
// completeness, plus the anamnesis screening check.
//
// Validators read form values through a fieldpath.Getter and never mutate
// them. Incompleteness is reported through result structs, never as Go
// errors. The scope of a check (which regions, which palpation questions)
// comes from the caller's Context, not from the form values.
package validation
