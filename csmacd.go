// Package csmacd estimates the throughput of a shared-medium CSMA/CD network by
// Monte Carlo simulation.  Stations contend for one channel in discrete time steps of
// one bit time; frames arrive as Bernoulli trials, a transmission is heard by the other
// stations after a propagation delay, overlapping transmissions are detected at the end
// of each tick and aborted at the start of the next, and colliding or blocked stations
// retry after a backoff.  A run reports how many frames were generated, delivered,
// collided and blocked, averaged over independent rounds.
package csmacd

// csmacd.go applies experiment configuration files to sweep and run parameters

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// A valueStruct type holds the different types a value might have,
// typically only one of these is used, and which one is known by context
type valueStruct struct {
	intValue    int
	floatValue  float64
	stringValue string
	boolValue   bool
	isInt       bool
}

// stringToValueStruct takes a string (used in the run-time configuration phase)
// and determines whether it is an integer, floating point, or a string
func stringToValueStruct(v string) valueStruct {
	vs := valueStruct{}
	v = strings.TrimSpace(v)

	// try conversion to int
	ivalue, ierr := strconv.Atoi(v)
	if ierr == nil {
		vs.intValue = ivalue
		vs.floatValue = float64(ivalue)
		vs.isInt = true
		return vs
	}

	// failing that, try conversion to float
	fvalue, ferr := strconv.ParseFloat(v, 64)
	if ferr == nil {
		vs.floatValue = fvalue
		// "1e3" names an integer too
		if fvalue == math.Trunc(fvalue) && math.Abs(fvalue) < math.MaxInt32 {
			vs.intValue = int(fvalue)
			vs.isInt = true
		}
		return vs
	}

	// left with it being a string.  See if true, True
	if v == "true" || v == "True" {
		vs.boolValue = true
		return vs
	}

	vs.stringValue = v
	return vs
}

// numeric reports whether the string decoded to a number
func (vs valueStruct) numeric() bool {
	return vs.stringValue == "" && !vs.boolValue
}

// intParam returns the value as an int, or an error naming the parameter
func (vs valueStruct) intParam(param string) (int, error) {
	if !vs.numeric() || !vs.isInt {
		return 0, fmt.Errorf("parameter %s needs an integer value", param)
	}
	return vs.intValue, nil
}

// floatParam returns the value as a float64, or an error naming the parameter
func (vs valueStruct) floatParam(param string) (float64, error) {
	if !vs.numeric() {
		return 0, fmt.Errorf("parameter %s needs a numeric value", param)
	}
	return vs.floatValue, nil
}

// floatListParam decodes a comma-separated list of numbers
func floatListParam(param, value string) ([]float64, error) {
	list := []float64{}
	for _, elem := range strings.Split(value, ",") {
		vs := stringToValueStruct(elem)
		f, err := vs.floatParam(param)
		if err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, nil
}

// setParam assigns one experiment parameter
func (sp *SweepParams) setParam(paramObj, param, value string) error {
	vs := stringToValueStruct(value)
	var err error

	switch paramObj + "." + param {
	case "Link.rate":
		sp.Params.LinkRate, err = vs.floatParam(param)
	case "Link.frameBits":
		sp.Params.FrameBits, err = vs.intParam(param)
	case "Channel.stations":
		sp.Params.Stations, err = vs.intParam(param)
	case "Channel.delay":
		sp.Params.DelayFraction, err = vs.floatParam(param)
	case "Channel.backoff":
		sp.Params.BackoffFactor, err = vs.intParam(param)
	case "Run.rounds":
		sp.Params.Rounds, err = vs.intParam(param)
	case "Run.simTime":
		sp.Params.SimTime, err = vs.floatParam(param)
	case "Run.seed":
		var seed uint64
		seed, err = strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			err = fmt.Errorf("parameter %s needs a non-negative integer value", param)
		}
		sp.Seed = seed
		sp.Seeded = err == nil
	case "Sweep.points":
		sp.Points, err = vs.intParam(param)
	case "Sweep.workers":
		sp.Workers, err = vs.intParam(param)
	case "Sweep.theoryDelays":
		sp.TheoryDelays, err = floatListParam(param, value)
	case "Sweep.theoryPoints":
		sp.TheoryPoints, err = vs.intParam(param)
	default:
		err = fmt.Errorf("parameter %s is not recognized for paramObj %s", param, paramObj)
	}
	return err
}

// ApplyExpCfg assigns every parameter of expCfg to sp, in list order.  All invalid
// parameters are reported together; sp is left unchanged if any is found.
func ApplyExpCfg(expCfg *ExpCfg, sp *SweepParams) error {
	updated := *sp
	updated.TheoryDelays = append([]float64(nil), sp.TheoryDelays...)

	errs := []error{}
	for _, param := range expCfg.Parameters {
		if err := ValidateParameter(param.ParamObj, param.Param); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := updated.setParam(param.ParamObj, param.Param, param.Value); err != nil {
			errs = append(errs, err)
		}
	}

	if err := ReportErrs(errs); err != nil {
		return fmt.Errorf("experiment %s: %w", expCfg.Name, err)
	}
	*sp = updated
	return nil
}
