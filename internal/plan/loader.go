package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Load reads and validates the deployment plan from a directory of CUE
// files. The directory must evaluate to a struct with a top-level "plan"
// field:
//
//	plan: {
//		upstreamStep: "DeployDaoFactory"
//		chainId:      11155111
//		factory:      "DaoFactory"
//		units: [
//			{
//				name:   "approver"
//				script: "script/DeployApprover.s.sol"
//				config: "config/approver.json"
//				params: {execDelay: 259200}
//			},
//		]
//	}
//
// Loading is fail-fast: the first structural problem is returned as a
// *LoadError with a CUE source position where one is available.
func Load(dir string) (*Plan, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("plan directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing plan directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error scanning plan directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	planVal := value.LookupPath(cue.ParsePath("plan"))
	if !planVal.Exists() {
		return nil, &LoadError{Code: ErrCodeInvalidPlan, Message: "no plan field found in CUE files"}
	}

	p, err := compilePlan(planVal)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// compilePlan converts the evaluated CUE plan value into a Plan.
func compilePlan(v cue.Value) (*Plan, error) {
	p := &Plan{}
	var err error

	if p.UpstreamStep, err = requiredString(v, "upstreamStep"); err != nil {
		return nil, err
	}
	if p.ChainID, err = requiredUint(v, "chainId"); err != nil {
		return nil, err
	}
	if p.FactoryComponent, err = requiredString(v, "factory"); err != nil {
		return nil, err
	}

	unitsVal := v.LookupPath(cue.ParsePath("units"))
	if !unitsVal.Exists() {
		return nil, &LoadError{Code: ErrCodeInvalidPlan, Message: "plan missing units field", Pos: v.Pos()}
	}
	iter, err := unitsVal.List()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidPlan, Message: fmt.Sprintf("units is not a list: %v", err), Pos: unitsVal.Pos()}
	}
	for i := 0; iter.Next(); i++ {
		unit, err := compileUnit(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		p.Units = append(p.Units, unit)
	}

	return p, nil
}

// compileUnit converts one CUE unit entry. name and script are required;
// config and params are optional.
func compileUnit(v cue.Value, index int) (Unit, error) {
	u := Unit{}
	var err error

	if u.Name, err = requiredString(v, "name"); err != nil {
		return Unit{}, unitErr(err, indexLabel(index))
	}
	if u.Script, err = requiredString(v, "script"); err != nil {
		return Unit{}, unitErr(err, u.Name)
	}

	configVal := v.LookupPath(cue.ParsePath("config"))
	if configVal.Exists() {
		if u.ConfigRef, err = configVal.String(); err != nil {
			return Unit{}, &LoadError{Code: ErrCodeInvalidUnit, Message: "config must be a string", Unit: u.Name, Pos: configVal.Pos()}
		}
	}

	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if paramsVal.Exists() {
		fields, err := paramsVal.Fields()
		if err != nil {
			return Unit{}, &LoadError{Code: ErrCodeInvalidUnit, Message: "params must be a struct", Unit: u.Name, Pos: paramsVal.Pos()}
		}
		u.Params = make(map[string]uint64)
		for fields.Next() {
			val, err := fields.Value().Uint64()
			if err != nil {
				return Unit{}, &LoadError{
					Code:    ErrCodeInvalidUnit,
					Message: fmt.Sprintf("param %s must be a non-negative integer: %v", fields.Label(), err),
					Unit:    u.Name,
					Pos:     fields.Value().Pos(),
				}
			}
			u.Params[fields.Label()] = val
		}
	}

	return u, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &LoadError{Code: ErrCodeInvalidPlan, Message: fmt.Sprintf("missing %s field", field), Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", &LoadError{Code: ErrCodeInvalidPlan, Message: fmt.Sprintf("%s must be a string: %v", field, err), Pos: fv.Pos()}
	}
	if s == "" {
		return "", &LoadError{Code: ErrCodeInvalidPlan, Message: fmt.Sprintf("%s is empty", field), Pos: fv.Pos()}
	}
	return s, nil
}

func requiredUint(v cue.Value, field string) (uint64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &LoadError{Code: ErrCodeInvalidPlan, Message: fmt.Sprintf("missing %s field", field), Pos: v.Pos()}
	}
	n, err := fv.Uint64()
	if err != nil {
		return 0, &LoadError{Code: ErrCodeInvalidPlan, Message: fmt.Sprintf("%s must be a non-negative integer: %v", field, err), Pos: fv.Pos()}
	}
	return n, nil
}

// unitErr rescopes a plan-level field error to a unit entry.
func unitErr(err error, unit string) error {
	if le, ok := err.(*LoadError); ok {
		return &LoadError{Code: ErrCodeInvalidUnit, Message: le.Message, Unit: unit, Pos: le.Pos}
	}
	return err
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
