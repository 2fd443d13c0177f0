package template

import "strings"

// IsUnresolved implements the recursive predicate of spec.md §4.5.1.
//
// A resolved value is "unresolved" (full or partial) iff:
//   - original and resolved are both strings: unresolved iff resolved still
//     contains "${" AND (resolved == original OR the two strings' variable
//     sets intersect). The intersection test catches partial resolution:
//     "User ${name} has ${count}" -> "User Alice has ${count}" is still
//     unresolved because ${count} from the original survives.
//   - both are equal-length lists: unresolved iff any corresponding pair is
//     unresolved (recurse).
//   - both are maps: unresolved iff any shared key's pair is unresolved.
//   - otherwise (types differ, or non-string leaves): resolved. A changed
//     leaf type means substitution actually happened — this avoids false
//     positives from third-party data that happens to contain a literal
//     "${...}" (spec.md §8 S6).
func IsUnresolved(original, resolved any) bool {
	origStr, origIsStr := original.(string)
	resStr, resIsStr := resolved.(string)
	if origIsStr && resIsStr {
		if !strings.Contains(resStr, "${") {
			return false
		}
		if resStr == origStr {
			return true
		}
		origVars := ExtractVariableSet(origStr)
		resVars := ExtractVariableSet(resStr)
		for v := range origVars {
			if resVars[v] {
				return true
			}
		}
		return false
	}

	origList, origIsList := original.([]any)
	resList, resIsList := resolved.([]any)
	if origIsList && resIsList {
		if len(origList) != len(resList) {
			return false
		}
		for i := range origList {
			if IsUnresolved(origList[i], resList[i]) {
				return true
			}
		}
		return false
	}

	origMap, origIsMap := original.(map[string]any)
	resMap, resIsMap := resolved.(map[string]any)
	if origIsMap && resIsMap {
		for k, ov := range origMap {
			rv, ok := resMap[k]
			if !ok {
				continue
			}
			if IsUnresolved(ov, rv) {
				return true
			}
		}
		return false
	}

	return false
}
