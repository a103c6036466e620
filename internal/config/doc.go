// Package config loads runtime settings from the environment and an
// optional .env file.
//
// Every setting has a SIFT_ variable and a default; Load never fails.
package config
