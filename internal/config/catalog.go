package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

// DefaultCatalog returns the supported HRRR variables. Attribute tuples are
// curated to be mutually exclusive so the first-match rule is unambiguous.
func DefaultCatalog() []domain.VariableSpec {
	return []domain.VariableSpec{
		hrrrVar("surface_pressure", 134, "sp", "surface", 0),
		hrrrVar("surface_roughness", 173, "sro", "surface", 0),
		hrrrVar("visible_beam_downward_solar_flux", 186, "fdir", "surface", 0),
		hrrrVar("visible_diffuse_downward_solar_flux", 175, "ssrd", "surface", 0),
		hrrrVar("temperature_2m", 167, "2t", "heightAboveGround", 2),
		hrrrVar("dewpoint_2m", 168, "2d", "heightAboveGround", 2),
		hrrrVar("relative_humidity_2m", 157, "r", "heightAboveGround", 2),
		hrrrVar("u_component_wind_10m", 165, "10u", "heightAboveGround", 10),
		hrrrVar("v_component_wind_10m", 166, "10v", "heightAboveGround", 10),
		hrrrVar("u_component_wind_80m", 246, "u", "heightAboveGround", 80),
		hrrrVar("v_component_wind_80m", 247, "v", "heightAboveGround", 80),
	}
}

func hrrrVar(userName string, paramID int64, shortName, typeOfLevel string, level int64) domain.VariableSpec {
	return domain.VariableSpec{
		UserName: userName,
		Match: []domain.Attribute{
			{Name: "paramId", Value: domain.IntAttr(paramID)},
			{Name: "shortName", Value: domain.StringAttr(shortName)},
			{Name: "typeOfLevel", Value: domain.StringAttr(typeOfLevel)},
			{Name: "level", Value: domain.IntAttr(level)},
		},
	}
}

// FilterCatalog selects catalog entries by userName from a comma-separated
// filter. An empty filter keeps everything. Unknown names are returned for
// the caller to warn about; a filter that selects nothing is an error.
func FilterCatalog(catalog []domain.VariableSpec, filter string) ([]domain.VariableSpec, []string, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return catalog, nil, nil
	}

	requested := make(map[string]bool)
	for _, name := range strings.Split(filter, ",") {
		if name = strings.TrimSpace(name); name != "" {
			requested[name] = true
		}
	}

	var selected []domain.VariableSpec
	for _, spec := range catalog {
		if requested[spec.UserName] {
			selected = append(selected, spec)
			delete(requested, spec.UserName)
		}
	}

	unknown := make([]string, 0, len(requested))
	for name := range requested {
		unknown = append(unknown, name)
	}
	sort.Strings(unknown)

	if len(selected) == 0 {
		return nil, unknown, fmt.Errorf("variable filter %q selects no supported variables", filter)
	}
	return selected, unknown, nil
}
