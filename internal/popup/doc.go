// Package popup implements the overlay popup controller: a registry of
// transient popups (toasts, modals, alerts) with z-order stacking, an
// animation-aware removal state machine, back-key interception, and a
// package-level facade bound to a single live controller.
package popup
