package csmacd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// An ExpParameter struct describes an input to experiment configuration at run-time. It specifies
//   - ParamObj identifies the kind of thing being configured : Link, Channel, Run, or Sweep
//   - Param identifies the parameter of that object, e.g., "rate", "stations", "points"
//   - Value is the string encoding of the value assigned
type ExpParameter struct {
	// Type of thing being configured
	ParamObj string `json:"paramObj" yaml:"paramObj"`

	// ParameterType, e.g., "rate", "delay", "rounds"
	Param string `json:"param" yaml:"param"`

	// string-encoded value associated with type
	Value string `json:"value" yaml:"value"`
}

// CreateExpParameter is a constructor.  Completely fills in the struct with the [ExpParameter] attributes.
func CreateExpParameter(paramObj, param, value string) *ExpParameter {
	exptr := &ExpParameter{ParamObj: paramObj, Param: param, Value: value}

	return exptr
}

// An ExpCfg structure holds all of the ExpParameters for a named experiment
type ExpCfg struct {
	// Name is an identifier for a group of [ExpParameters].  No particular interpretation of this string is
	// used, except as a label carried into trace and result files
	Name string `json:"expname" yaml:"expname"`

	// Parameters is a list of all the [ExpParameter] objects presented to the simulator for an experiment.
	// Later entries override earlier ones.
	Parameters []ExpParameter `json:"parameters" yaml:"parameters"`
}

// CreateExpCfg is a constructor. Saves the offered Name and initializes the slice of ExpParameters.
func CreateExpCfg(name string) *ExpCfg {
	expcfg := &ExpCfg{Name: name, Parameters: make([]ExpParameter, 0)}

	return expcfg
}

// ExpParamObjs and ExpParams hold descriptions of the types of objects that are
// initialized by an exp file, and the parameter types defined for each object type
var ExpParamObjs []string = []string{"Link", "Channel", "Run", "Sweep"}

var ExpParams map[string][]string = map[string][]string{
	"Link":    {"rate", "frameBits"},
	"Channel": {"stations", "delay", "backoff"},
	"Run":     {"rounds", "simTime", "seed"},
	"Sweep":   {"points", "workers", "theoryDelays", "theoryPoints"},
}

// ValidateParameter returns an error if the paramObj and param values don't
// make sense taken together within an ExpParameter.
func ValidateParameter(paramObj, param string) error {
	// the paramObj string has to be recognized as one of the permitted ones (stored in list ExpParamObjs)
	if !slices.Contains(ExpParamObjs, paramObj) {
		return fmt.Errorf("parameter paramObj %s is not recognized", paramObj)
	}

	// make sure the type of param is consistent with the paramObj
	if !slices.Contains(ExpParams[paramObj], param) {
		return fmt.Errorf("parameter %s is not recognized for paramObj %s", param, paramObj)
	}

	return nil
}

// AddParameter accepts the three values in an ExpParameter, creates one, and adds to the ExpCfg's list.
// Returns an error if the parameters are not validated.
func (expcfg *ExpCfg) AddParameter(paramObj, param, value string) error {
	err := ValidateParameter(paramObj, param)
	if err != nil {
		return err
	}

	excp := CreateExpParameter(paramObj, param, value)
	expcfg.Parameters = append(expcfg.Parameters, *excp)
	return nil
}

// WriteToFile stores the ExpCfg struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (expcfg *ExpCfg) WriteToFile(filename string) error {
	return writeDesc(filename, expcfg)
}

// ReadExpCfg deserializes a byte slice holding a representation of an ExpCfg struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them.  A deserialized representation is returned, or an error if one is generated
// from a file read or the deserialization.
func ReadExpCfg(filename string, useYAML bool, dict []byte) (*ExpCfg, error) {
	var err error
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := ExpCfg{}
	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}

// GetExpCfg reads the experiment file whose name is given, choosing yaml or json from its extension
func GetExpCfg(filename string) (*ExpCfg, error) {
	ext := path.Ext(filename)
	useYAML := (ext == ".yaml") || (ext == ".yml") || (ext == ".YAML")
	return ReadExpCfg(filename, useYAML, nil)
}

// ReportErrs transforms a list of errors and transforms the non-nil ones into a single error
// with comma-separated report of all the constituent errors, and returns it.
func ReportErrs(errs []error) error {
	errMsg := make([]string, 0)
	for _, err := range errs {
		if err != nil {
			errMsg = append(errMsg, err.Error())
		}
	}
	if len(errMsg) == 0 {
		return nil
	}

	return errors.New(strings.Join(errMsg, ","))
}

// CheckOutputFiles checks the file system to ensure that the directory of every
// (non-empty) argument filename exists, so that results can be written there.
func CheckOutputFiles(names []string) (bool, error) {
	errs := make([]error, 0)

	for _, name := range names {
		if len(name) == 0 {
			continue
		}

		// split off the directory portion of the path
		directory, _ := filepath.Split(name)
		if directory == "" {
			continue
		}
		if _, err := os.Stat(directory); err != nil {
			errs = append(errs, err)
		}
	}

	if err := ReportErrs(errs); err != nil {
		return false, err
	}
	return true, nil
}
