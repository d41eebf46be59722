// Package staging sweeps scratch directories left in temp_audio_dir by runs
// that were killed before their own cleanup ran.
package staging
