// Package mqtt connects the emulator to an MQTT broker.
//
// The broker is optional. When enabled, the emulator publishes retained
// register and sensor state so dashboards can follow the unit without
// polling the web API, and accepts register write batches on a command
// topic. The client handles:
//   - Connection with auto-reconnect and restored subscriptions
//   - A retained online/offline status with a Last Will
//   - Publishing with QoS validation and a 1MB payload cap
//   - Handler panic recovery
//
// # Topics
//
//	{prefix}/state/register/{address}   retained, zero-based address
//	{prefix}/state/sensors              retained simulator reading
//	{prefix}/system/status              retained online/offline (LWT)
//	{prefix}/command/mwrite             write batch intake
//	{prefix}/response/mwrite/{request}  write batch report
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.PublishRetained(client.Topics().RegisterState(1160), payload)
package mqtt
