// SPDX-License-Identifier: LGPL-3.0-or-later

// Package capability models a ReCap-style capability set: which
// (resource, ability) pairs a SIWE message grants, and how that set
// round-trips through a single SIWE resource URI.
package capability

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ResourceKind names the class of thing a capability grants access to.
type ResourceKind string

const (
	ResourcePKP                    ResourceKind = "pkp"
	ResourceAction                 ResourceKind = "lit-action"
	ResourceAccessControlCondition ResourceKind = "access-control-condition"
	ResourceWildcard               ResourceKind = "*"
)

// Ability names an operation a Resource grant authorises.
type Ability string

const (
	PKPSigning                       Ability = "pkp-signing"
	LitActionExecution               Ability = "lit-action-execution"
	AccessControlConditionSigning    Ability = "access-control-condition-signing"
	AccessControlConditionDecryption Ability = "access-control-condition-decryption"
)

// Resource identifies a single capability target. ID is "*" for a
// wildcard grant across every instance of Kind.
type Resource struct {
	Kind ResourceKind `json:"kind"`
	ID   string       `json:"id"`
}

// Key returns the canonical string used as a map key and in the encoded
// grant set; it is the resource's identity for equality purposes.
func (r Resource) Key() string {
	if r.Kind == ResourceWildcard {
		return "*"
	}
	return fmt.Sprintf("%s://%s", r.Kind, r.ID)
}

// ResourceAbilityRequest is the capability a given call site demands.
type ResourceAbilityRequest struct {
	Resource Resource
	Ability  Ability
}

// grantSet is the JSON-serialisable, canonically-ordered form of a
// capability object's grants, used both for SIWE-resource encoding and
// for the statement summary.
type grantSet struct {
	Grants []grantEntry `json:"grants"`
}

type grantEntry struct {
	Resource  Resource  `json:"resource"`
	Abilities []Ability `json:"abilities"`
}

// Object is an in-memory model of a capability set: an ordered mapping
// from canonical resource keys to the abilities granted for them.
type Object struct {
	byKey map[string]resourceGrant
}

type resourceGrant struct {
	resource  Resource
	abilities map[Ability]struct{}
}

// New returns an empty capability object.
func New() *Object {
	return &Object{byKey: make(map[string]resourceGrant)}
}

// AddCapability grants a single (resource, ability) pair.
func (o *Object) AddCapability(resource Resource, ability Ability) {
	key := resource.Key()
	rg, ok := o.byKey[key]
	if !ok {
		rg = resourceGrant{resource: resource, abilities: make(map[Ability]struct{})}
	}
	rg.abilities[ability] = struct{}{}
	o.byKey[key] = rg
}

// AddAllCapabilitiesForResource grants every known ability for resource.
func (o *Object) AddAllCapabilitiesForResource(resource Resource) {
	for _, a := range abilitiesFor(resource.Kind) {
		o.AddCapability(resource, a)
	}
}

func abilitiesFor(kind ResourceKind) []Ability {
	switch kind {
	case ResourcePKP:
		return []Ability{PKPSigning}
	case ResourceAction:
		return []Ability{LitActionExecution}
	case ResourceAccessControlCondition:
		return []Ability{AccessControlConditionSigning, AccessControlConditionDecryption}
	default:
		return []Ability{PKPSigning, LitActionExecution, AccessControlConditionSigning, AccessControlConditionDecryption}
	}
}

// VerifyCapabilitiesForResource reports whether o grants ability for
// resource, either via an exact match or a wildcard grant.
func (o *Object) VerifyCapabilitiesForResource(resource Resource, ability Ability) bool {
	if rg, ok := o.byKey[string(ResourceWildcard)]; ok {
		if _, has := rg.abilities[ability]; has {
			return true
		}
	}
	if rg, ok := o.byKey[Resource{Kind: resource.Kind, ID: "*"}.Key()]; ok {
		if _, has := rg.abilities[ability]; has {
			return true
		}
	}
	rg, ok := o.byKey[resource.Key()]
	if !ok {
		return false
	}
	_, has := rg.abilities[ability]
	return has
}

// Statement renders a short human-readable summary of the grants, used
// as the SIWE message's `statement` field.
func (o *Object) Statement() string {
	if len(o.byKey) == 0 {
		return "This application has no capabilities."
	}
	keys := o.sortedKeys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		rg := o.byKey[k]
		abilities := make([]string, 0, len(rg.abilities))
		for a := range rg.abilities {
			abilities = append(abilities, string(a))
		}
		sort.Strings(abilities)
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(abilities, ",")))
	}
	return "This application can perform the following actions on your behalf: " + strings.Join(parts, "; ")
}

func (o *Object) sortedKeys() []string {
	keys := make([]string, 0, len(o.byKey))
	for k := range o.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toGrantSet builds the canonical, order-stable serialisable form.
func (o *Object) toGrantSet() grantSet {
	keys := o.sortedKeys()
	gs := grantSet{Grants: make([]grantEntry, 0, len(keys))}
	for _, k := range keys {
		rg := o.byKey[k]
		abilities := make([]string, 0, len(rg.abilities))
		for a := range rg.abilities {
			abilities = append(abilities, string(a))
		}
		sort.Strings(abilities)
		typed := make([]Ability, len(abilities))
		for i, a := range abilities {
			typed[i] = Ability(a)
		}
		gs.Grants = append(gs.Grants, grantEntry{Resource: rg.resource, Abilities: typed})
	}
	return gs
}

// recapScheme is the URI scheme used for the single SIWE resource that
// encodes the whole capability set.
const recapScheme = "urn:recap:"

// EncodeAsSiweResource serialises the capability object into a single
// SIWE resource URI: urn:recap:<base64url(canonical-json(grants))>.
func (o *Object) EncodeAsSiweResource() (string, error) {
	gs := o.toGrantSet()
	data, err := json.Marshal(gs)
	if err != nil {
		return "", fmt.Errorf("capability: marshal grant set: %w", err)
	}
	return recapScheme + base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a SIWE resource URI produced by EncodeAsSiweResource back
// into an Object. decode(encode(x)) == x must hold for any x.
func Decode(resourceURI string) (*Object, error) {
	if !strings.HasPrefix(resourceURI, recapScheme) {
		return nil, fmt.Errorf("capability: not a recap resource URI: %q", resourceURI)
	}
	b64 := strings.TrimPrefix(resourceURI, recapScheme)
	data, err := base64.RawURLEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("capability: decode base64: %w", err)
	}
	var gs grantSet
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("capability: unmarshal grant set: %w", err)
	}
	o := New()
	for _, entry := range gs.Grants {
		for _, a := range entry.Abilities {
			o.AddCapability(entry.Resource, a)
		}
	}
	return o, nil
}

// Equal reports whether o and other grant exactly the same set of
// (resource, ability) pairs, independent of insertion order.
func (o *Object) Equal(other *Object) bool {
	if other == nil {
		return len(o.byKey) == 0
	}
	if len(o.byKey) != len(other.byKey) {
		return false
	}
	for k, rg := range o.byKey {
		org, ok := other.byKey[k]
		if !ok || len(rg.abilities) != len(org.abilities) {
			return false
		}
		for a := range rg.abilities {
			if _, has := org.abilities[a]; !has {
				return false
			}
		}
	}
	return true
}

// FromResourceAbilityRequests builds an Object that grants every known
// ability for each requested resource (the requested abilities
// themselves are not consulted) — used by the session-sig
// orchestrator's default capability when the caller supplies none,
// per spec.md §4.F step 2.
func FromResourceAbilityRequests(reqs []ResourceAbilityRequest) *Object {
	o := New()
	for _, r := range reqs {
		o.AddAllCapabilitiesForResource(r.Resource)
	}
	return o
}
