// Package simulator advances a first-order thermal and humidity model of the
// ventilated space and publishes the result to the sensor registers.
//
// Every tick the Simulator reads the setpoint, heater, cooler and heat
// recovery demands and the fans-running flag from the register table, steps
// its private State, and writes outdoor, supply and extract temperatures
// (tenths of a degree, truncated) and relative humidity (whole percent,
// truncated). These writes are internal and do not run the rule engine.
//
// The continuous State lives only inside the Simulator. The register table
// holds the truncated snapshot clients see.
//
// The model is a plausible approximation for exercising client software. It
// is not a validated building model.
package simulator
