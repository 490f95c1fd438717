package transform

// EntityAttributes is one entity's attribute map as it flows through a
// transform pipeline: an opaque identifier plus attribute name/value pairs.
type EntityAttributes struct {
	ID         string
	Attributes map[string]string
}

// EntityFailure records one entity's pipeline failure under the
// per-entity-error policy. Shape mirrors mask.EntityFailure — the two
// packages report batch failures identically (spec §4.4/§7: "fail that
// entity and, unless a per-entity-error flag is set, the whole batch").
type EntityFailure struct {
	EntityID string
	Err      error
}

// ApplyBatch runs the pipeline over every attribute of every entity in
// entities. A transform failure on any one attribute fails that whole
// entity (spec §7's canonical examples — non-numeric input to `number`,
// an empty value under the `error` policy — are attribute-level failures
// that abort the entity, not just the one attribute).
//
// When perEntityError is false (the default), the first entity failure
// aborts the whole batch, matching mask.MaskBatch's default. When true,
// failing entities are omitted from the returned slice and reported in
// the second return value instead, so that one bad record in a large
// batch does not discard every other record's transformed output.
func (p Pipeline) ApplyBatch(entities []EntityAttributes, perEntityError bool) ([]EntityAttributes, []EntityFailure, error) {
	out := make([]EntityAttributes, 0, len(entities))
	var failures []EntityFailure

	for _, e := range entities {
		attrs := make(map[string]string, len(e.Attributes))
		var entityErr error

		for name, value := range e.Attributes {
			res, err := p.Apply(e.ID, name, value)
			if err != nil {
				entityErr = err
				break
			}
			if res.Skip {
				continue
			}
			attrs[name] = res.Value
		}

		if entityErr != nil {
			if !perEntityError {
				return nil, nil, entityErr
			}
			failures = append(failures, EntityFailure{EntityID: e.ID, Err: entityErr})
			continue
		}

		out = append(out, EntityAttributes{ID: e.ID, Attributes: attrs})
	}

	return out, failures, nil
}
