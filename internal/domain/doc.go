// Package domain models localized power-outage risk assessment.
//
// # Purpose
//
// The service predicts power-outage risk per monitored neighborhood from a
// weather snapshot (current conditions or a short-range forecast average) and
// that neighborhood's historical outage record. The engine output is a 0-100
// risk score, a coarse risk tier, and an ordered list of contributing factors
// that downstream collaborators (a natural-language explainer, the map client)
// consume.
//
// # Risk signals
//
// Three independent signals are fused into the final score:
//
//	Anomaly   - how unusual the snapshot is against the neighborhood's
//	            historical mean/stddev per weather dimension (z-scores).
//	Pattern   - similarity to recorded pre-outage weather configurations,
//	            weighted by recency and outage severity.
//	Static    - infrastructure vulnerability derived from neighborhood
//	            metadata (vulnerability survey score, equipment age).
//
// # Risk tiers
//
// The numeric score maps to a tier with lower-edge-inclusive thresholds:
//
//	Low       score < 40
//	Moderate  40 <= score < 70
//	High      score >= 70
//
// # Units
//
// Temperature is degrees Celsius, wind speed km/h, precipitation mm over the
// forecast window, humidity percent, pressure hPa. Snapshot validation bounds
// are physical-plausibility checks (e.g. the recorded surface temperature
// extremes are roughly -89°C to +57°C), not score shaping.
//
// # Purity
//
// Every assessment is a pure function of (snapshot, baseline, configuration):
// reference data is immutable after load, and no call mutates shared state, so
// assessments may run concurrently without locking. The only ambient input is
// the assessment timestamp, taken from the package clock (see [SetClock]).
package domain
