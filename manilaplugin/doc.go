// Package manilaplugin implements both ends of the manila-plugin relation:
// the exchange through which the manila charm (the principal service)
// pushes service-user authentication data to a backend plugin charm (a
// subordinate), and the plugin pushes back configuration fragments for the
// files the manila charm owns.
//
// # Endpoints
//
//	Provider : the plugin side. Receives AuthenticationData, publishes
//	           ConfigurationData and a diagnostic name.
//	Requirer : the manila side. Publishes AuthenticationData (skipping
//	           scopes whose stored copy is already identical), reads the
//	           plugin's name and ConfigurationData.
//
// # Status flags
//
// Each endpoint keeps three booleans per scope, the surface the charm's
// reconciliation loop reads:
//
//	Connected : the peer has joined.
//	Available : the data this side expects from the peer has arrived.
//	Changed   : Available, and the consumer has not yet acknowledged the
//	            data via AcknowledgeChange.
//
// Reconcile recomputes Available/Changed after every change event; it never
// sets Changed without Available. Changed is a level-triggered signal: it
// stays up until AcknowledgeChange, and a departed/broken event clears all
// three flags.
//
// # Wire format
//
// Structured payloads are wrapped as {"data": <payload>} and stored as JSON
// text under the relation keys "_authentication_data",
// "_configuration_data", and "_name", matching the established peer
// protocol.
//
// Endpoints are driven by a single-threaded hook dispatcher (package hook):
// one handler runs to completion at a time, so the types hold no locks and
// are not safe for concurrent use.
package manilaplugin
