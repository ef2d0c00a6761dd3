// Package alerts evaluates threshold rules against incoming diagnostic
// reports and delivers webhook notifications when rules fire or resolve.
//
// Conditions are simple "field operator value" expressions over the report
// summary: rhat_max, neff_ratio_min, dropped, and state. Note the
// directions: a HIGH rhat_max is bad, a LOW neff_ratio_min is bad — rules
// are written against the numeric fields, so the inversion is explicit in
// the rule, not hidden in the engine.
package alerts
