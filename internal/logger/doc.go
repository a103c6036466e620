// Package logger is a thin structured-logging layer over zap.
package logger
