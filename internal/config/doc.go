// Package config loads pitchside's TOML configuration.
//
// Load resolves values in this order: built-in defaults, then
// ~/.config/pitchside/config.toml (or an explicit path), then environment
// variables. A missing file is not an error. Poll intervals and fan-out
// limits are clamped to safe ranges before validation, so a typo in an env
// variable slows the feed down rather than hammering the upstream API.
//
// Recognised file keys:
//
//	base_url                 upstream API root (https://www.fotmob.com)
//	user_agent               User-Agent header
//	request_timeout_seconds  per-request HTTP timeout (5)
//	league                   starting league slug (premier-league)
//	live_poll_seconds        live list refresh, minimum 5 (15)
//	upcoming_poll_seconds    fixture window refresh, minimum 10 (60)
//	upcoming_window_days     days of fixtures, 1..14 (7)
//	details_inflight_max     concurrent detail fetches, 1..64 (8)
//	fetch_parallelism        squad/player fan-out, 2..32 (6)
//	detail_cache_ttl_seconds reuse window for match details (300)
//	auto_warm                off, missing or full
//	cache_dir                persisted analysis cache
//	log_path                 JSON log file
//	log_level                debug, info, warn or error
//	[league_ids]             slug = [ids] overrides
//
// The environment variables PULSE_POLL_SECS, UPCOMING_POLL_SECS,
// UPCOMING_WINDOW_DAYS, DETAILS_INFLIGHT_MAX, AUTO_WARM_CACHE and
// PITCHSIDE_BASE_URL override the matching file keys.
package config
