// Package domain models ARGO float profile measurements and the structured
// queries asked against them.
//
// # Data Source
//
// Profiles originate from ARGO float NetCDF files for the Indian Ocean. An
// upstream converter flattens them to JSON before they reach this service,
// and different converter generations emit different shapes (see
// [NormalizeFile] for the recognized variants and their priority).
//
// # ARGO Data Conventions
//
// Coordinates:
//
//	WGS-84 decimal degrees. Some converters emit longitudes in [0, 360);
//	values above 180 are wrapped to the negative range.
//
// Time:
//
//	ISO-8601 strings in most files. Older files carry "JULD", the ARGO
//	Julian day: fractional days since 1950-01-01T00:00:00Z.
//	The argo-summary shape splits the date into year/month/day integers.
//
// Depth:
//
//	Pressure in decibars is used as depth in metres (1 dbar ≈ 1 m, accurate
//	to about 1% in the upper 2000 m). Negative values (elevation
//	convention) are taken as absolute depths.
//
// Quality control:
//
//	ARGO QC digits: 1 good, 2 probably good, 3 probably bad, 4 bad,
//	0/9 no QC. Profile-level letters: A (all levels good) through F
//	(no good levels). Both collapse to the four-level [QualityFlag].
//
// Emoji categories:
//
//	Temperature: >28°C hot | 20-28 warm | 15-20 moderate | <15 cold
//	Salinity:    >36 PSU high | 34-36 normal | <34 low
//	Depth:       0-50 m surface | 50-200 shallow | 200-1000 middle |
//	             1000-2000 deep | >2000 abyssal
//
//	Lower bounds are closed: 28.0°C is warm, 15.0°C is moderate.
//
// # Regions
//
// Regions are never stored on a record. [ClassifyRegion] derives them from a
// static polygon table covering the basins the float fleet reports from.
package domain
