package sim_test

// Registers the strategy constructors for tests in package sim.
import _ "github.com/keepalive-sim/keepalive-sim/sim/optimizer"
