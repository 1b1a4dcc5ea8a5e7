// Package handlers implements the chat widget's HTTP endpoints.
package handlers
