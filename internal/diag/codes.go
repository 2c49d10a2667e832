package diag

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Code is the numeric part of a diagnostic identifier (CS0102 → 102).
type Code uint16

const (
	UnknownCode Code = 0

	// Member conflicts and hiding.
	ErrMemberReserved           Code = 82
	ErrDuplicateNameInType      Code = 102
	ErrMemberAlreadyExists      Code = 111
	ErrMemberNameSameAsType     Code = 542
	ErrOverloadRefKind          Code = 663
	ErrInconsistentIndexerNames Code = 668
	WrnNewRequired              Code = 108
	WrnNewNotRequired           Code = 109
	WrnNewOrOverrideExpected    Code = 114
	ErrHidingAbstractMethod     Code = 533

	// Overrides.
	ErrOverrideNotEvent               Code = 72
	ErrOverrideNotExpected            Code = 115
	ErrCantOverrideNonFunction        Code = 505
	ErrCantOverrideNonVirtual         Code = 506
	ErrCantOverrideSealed             Code = 239
	ErrCantChangeAccessOnOverride     Code = 507
	ErrCantChangeReturnTypeOnOverride Code = 508
	ErrCantOverrideNonProperty        Code = 544
	ErrNoGetToOverride                Code = 545
	ErrNoSetToOverride                Code = 546
	ErrCantOverrideBogusMethod        Code = 569
	ErrCantChangeTypeOnOverride       Code = 1715
	ErrCantChangeRefReturnOnOverride  Code = 8148
	ErrUnimplementedAbstractMethod    Code = 534

	// Interface implementations.
	ErrExplicitInterfaceNotInterface  Code = 538
	ErrInterfaceMemberNotFound        Code = 539
	ErrClassDoesntImplementInterface  Code = 540
	ErrExplicitPropertyAddingAccessor Code = 550
	WrnExplicitImplCollision          Code = 473
	ErrDuplicateExplicitImpl          Code = 8646
	ErrUnimplementedInterfaceMember   Code = 535
	ErrInterfaceMemberStatic          Code = 736
	ErrInterfaceMemberNotPublic       Code = 737
	ErrInterfaceMemberWrongReturnType Code = 738

	// Constraints.
	ErrRefValBoundWithClass      Code = 450
	ErrNewBoundWithVal           Code = 451
	ErrRefConstraintNotSatisfied Code = 452
	ErrValConstraintNotSatisfied Code = 453
	ErrCircularConstraint        Code = 454
	ErrBaseConstraintConflict    Code = 455
	ErrConWithValCon             Code = 456
	ErrOverrideWithConstraints   Code = 460
	ErrNewConstraintNotSatisfied Code = 310
	ErrGenericConstraintRefType  Code = 311
	ErrGenericConstraintTyVar    Code = 314
	ErrGenericConstraintValType  Code = 315
	ErrBadBoundType              Code = 701
	ErrSpecialTypeAsBound        Code = 702
	ErrBadVisBound               Code = 703
	ErrBadConstraintType         Code = 706
	ErrConstraintIsStaticClass   Code = 717

	// Modifiers.
	ErrBadMemberFlag                        Code = 106
	ErrStaticNotVirtual                     Code = 112
	ErrOverrideNotNew                       Code = 113
	ErrStaticConstParam                     Code = 132
	ErrExternHasBody                        Code = 179
	ErrAbstractAndExtern                    Code = 180
	ErrSealedNonOverride                    Code = 238
	ErrInvalidPropertyAccessMod             Code = 273
	ErrDuplicatePropertyAccessMods          Code = 274
	ErrAccessModMissingAccessor             Code = 276
	ErrAbstractSealedStatic                 Code = 418
	ErrSealedStaticClass                    Code = 441
	ErrPrivateAbstractAccessor              Code = 442
	ErrAbstractHasBody                      Code = 500
	ErrConcreteMissingBody                  Code = 501
	ErrAbstractAndSealed                    Code = 502
	ErrAbstractNotVirtual                   Code = 503
	ErrAbstractInConcreteClass              Code = 513
	ErrStaticConstructorWithAccessModifiers Code = 515
	ErrNewVirtualInSealed                   Code = 549
	ErrOperatorsMustBeStatic                Code = 558
	ErrOnlyClassesCanContainDestructors     Code = 575
	ErrVirtualPrivate                       Code = 621
	ErrProtectedInStruct                    Code = 666
	ErrVolatileAndReadonly                  Code = 678
	ErrNoNamespacePrivate                   Code = 1527

	// Static classes.
	ErrInstanceMemberInStaticClass Code = 708
	ErrConstructorInStaticClass    Code = 710
	ErrDestructorInStaticClass     Code = 711
	ErrStaticDerivedFromNonObject  Code = 713
	ErrStaticClassInterfaceImpl    Code = 714
	ErrOperatorInStaticClass       Code = 715
	ErrIndexerInStaticClass        Code = 720

	// Partial members.
	ErrPartialMemberCannotBeAbstract                            Code = 750
	ErrPartialMemberOnlyInPartialClass                          Code = 751
	ErrPartialMemberNotExplicit                                 Code = 754
	ErrPartialMethodExtensionDifference                         Code = 755
	ErrPartialMethodOnlyOneLatent                               Code = 756
	ErrPartialMethodOnlyOneActual                               Code = 757
	ErrPartialMethodParamsDifference                            Code = 758
	ErrPartialMethodMustHaveLatent                              Code = 759
	ErrPartialMethodInconsistentConstraints                     Code = 761
	ErrPartialMemberStaticDifference                            Code = 763
	ErrPartialMemberUnsafeDifference                            Code = 764
	ErrPartialMemberReadOnlyDifference                          Code = 8663
	ErrPartialMethodWithAccessibilityModsMustHaveImplementation Code = 8793
	ErrPartialMethodWithNonVoidReturnMustHaveAccessMods         Code = 8794
	ErrPartialMethodWithOutParamMustHaveAccessMods              Code = 8795
	ErrPartialMethodWithExtendedModMustHaveAccessMods           Code = 8796
	ErrPartialMemberAccessibilityDifference                     Code = 8797
	ErrPartialMemberExtendedModDifference                       Code = 8798
	ErrPartialMethodReturnTypeDifference                        Code = 8817
	ErrPartialMemberRefReturnDifference                         Code = 8818
	ErrPartialPropertyMissingImplementation                     Code = 9248
	ErrPartialPropertyMissingDefinition                         Code = 9249
	ErrPartialPropertyDuplicateDefinition                       Code = 9250
	ErrPartialPropertyDuplicateImplementation                   Code = 9251
	ErrPartialPropertyMissingAccessor                           Code = 9252
	ErrPartialPropertyUnexpectedAccessor                        Code = 9253
	ErrPartialPropertyTypeDifference                            Code = 9255
	ErrPartialMemberRefKindDifference                           Code = 9256

	// Exports and forwarders.
	ErrForwardedTypeIsNested                  Code = 730
	ErrCycleInTypeForwarder                   Code = 731
	ErrDuplicateTypeForwarder                 Code = 739
	ErrExportedTypeConflictsWithDeclaration   Code = 8004
	ErrExportedTypesConflict                  Code = 8005
	ErrForwardedTypeConflictsWithDeclaration  Code = 8006
	ErrForwardedTypesConflict                 Code = 8007
	ErrForwardedTypeConflictsWithExportedType Code = 8008
)

type codeSpec struct {
	sev    Severity
	title  string
	format string
}

var codeSpecs = map[Code]codeSpec{
	UnknownCode: {SevError, "Unknown diagnostic", "{0}"},

	ErrMemberReserved:           {SevError, "Reserved member name", "Type '{0}' already reserves a member called '{1}' with the same parameter types"},
	ErrDuplicateNameInType:      {SevError, "Duplicate member name", "The type '{0}' already contains a definition for '{1}'"},
	ErrMemberAlreadyExists:      {SevError, "Duplicate member signature", "Type '{0}' already defines a member called '{1}' with the same parameter types"},
	ErrMemberNameSameAsType:     {SevError, "Member named like its type", "'{0}': member names cannot be the same as their enclosing type"},
	ErrOverloadRefKind:          {SevError, "Overload differs only by ref kind", "'{0}' cannot define an overloaded {1} that differs only on parameter modifiers '{2}' and '{3}'"},
	ErrInconsistentIndexerNames: {SevError, "Inconsistent indexer names", "Two indexers have different names; the IndexerName attribute must be used with the same name on every indexer within a type"},
	WrnNewRequired:              {SevWarning, "Member hides inherited member", "'{0}' hides inherited member '{1}'. Use the new keyword if hiding was intended."},
	WrnNewNotRequired:           {SevWarning, "Unnecessary new modifier", "The member '{0}' does not hide an accessible member. The new keyword is not required."},
	WrnNewOrOverrideExpected:    {SevWarning, "Member hides overridable member", "'{0}' hides inherited member '{1}'. To make the current member override that implementation, add the override keyword. Otherwise add the new keyword."},
	ErrHidingAbstractMethod:     {SevError, "Member hides abstract member", "'{0}' hides inherited abstract member '{1}'"},

	ErrOverrideNotEvent:               {SevError, "Override target is not an event", "'{0}': cannot override; '{1}' is not an event"},
	ErrOverrideNotExpected:            {SevError, "Nothing to override", "'{0}': no suitable method found to override"},
	ErrCantOverrideNonFunction:        {SevError, "Override target is not a method", "'{0}': cannot override because '{1}' is not a function"},
	ErrCantOverrideNonVirtual:         {SevError, "Override target is not virtual", "'{0}': cannot override inherited member '{1}' because it is not marked virtual, abstract, or override"},
	ErrCantOverrideSealed:             {SevError, "Override target is sealed", "'{0}': cannot override inherited member '{1}' because it is sealed"},
	ErrCantChangeAccessOnOverride:     {SevError, "Override changes accessibility", "'{0}': cannot change access modifiers when overriding '{1}' inherited member '{2}'"},
	ErrCantChangeReturnTypeOnOverride: {SevError, "Override changes return type", "'{0}': return type must be '{1}' to match overridden member '{2}'"},
	ErrCantOverrideNonProperty:        {SevError, "Override target is not a property", "'{0}': cannot override because '{1}' is not a property"},
	ErrNoGetToOverride:                {SevError, "No get accessor to override", "'{0}': cannot override because '{1}' does not have an overridable get accessor"},
	ErrNoSetToOverride:                {SevError, "No set accessor to override", "'{0}': cannot override because '{1}' does not have an overridable set accessor"},
	ErrCantOverrideBogusMethod:        {SevError, "Override target is not supported", "'{0}': cannot override '{1}' because it is not supported by the language"},
	ErrCantChangeTypeOnOverride:       {SevError, "Override changes type", "'{0}': type must be '{1}' to match overridden member '{2}'"},
	ErrCantChangeRefReturnOnOverride:  {SevError, "Override changes ref return", "'{0}' must match by reference return of overridden member '{1}'"},
	ErrUnimplementedAbstractMethod:    {SevError, "Abstract member not implemented", "'{0}' does not implement inherited abstract member '{1}'"},

	ErrExplicitInterfaceNotInterface:  {SevError, "Explicit implementation of non-interface", "'{0}' in explicit interface declaration is not an interface"},
	ErrInterfaceMemberNotFound:        {SevError, "Explicit implementation target not found", "'{0}' in explicit interface declaration is not found among members of the interface that can be implemented"},
	ErrClassDoesntImplementInterface:  {SevError, "Interface not implemented by container", "'{0}': containing type does not implement interface '{1}'"},
	ErrExplicitPropertyAddingAccessor: {SevError, "Explicit implementation adds accessor", "'{0}' adds an accessor not found in interface member '{1}'"},
	WrnExplicitImplCollision:          {SevWarning, "Ambiguous explicit implementation", "Explicit interface implementation '{0}' matches more than one interface member. Which interface member is actually chosen is implementation-dependent. Consider using a non-explicit implementation instead."},
	ErrDuplicateExplicitImpl:          {SevError, "Duplicate explicit implementation", "'{0}' is explicitly implemented more than once."},
	ErrUnimplementedInterfaceMember:   {SevError, "Interface member not implemented", "'{0}' does not implement interface member '{1}'"},
	ErrInterfaceMemberStatic:          {SevError, "Interface member implemented by static member", "'{0}' does not implement instance interface member '{1}'. '{2}' cannot implement the interface member because it is static."},
	ErrInterfaceMemberNotPublic:       {SevError, "Interface member implemented by non-public member", "'{0}' does not implement interface member '{1}'. '{2}' cannot implement an interface member because it is not public."},
	ErrInterfaceMemberWrongReturnType: {SevError, "Interface member return type mismatch", "'{0}' does not implement interface member '{1}'. '{2}' cannot implement '{1}' because it does not have the matching return type of '{3}'."},

	ErrRefValBoundWithClass:      {SevError, "Class constraint combined with class/struct", "'{0}': cannot specify both a constraint class and the 'class' or 'struct' constraint"},
	ErrNewBoundWithVal:           {SevError, "new() combined with struct", "The 'new()' constraint cannot be used with the 'struct' constraint"},
	ErrRefConstraintNotSatisfied: {SevError, "Reference type required", "The type '{2}' must be a reference type in order to use it as parameter '{1}' in the generic type or method '{0}'"},
	ErrValConstraintNotSatisfied: {SevError, "Value type required", "The type '{2}' must be a non-nullable value type in order to use it as parameter '{1}' in the generic type or method '{0}'"},
	ErrCircularConstraint:        {SevError, "Circular constraint", "Circular constraint dependency involving '{0}' and '{1}'"},
	ErrBaseConstraintConflict:    {SevError, "Conflicting constraints", "Type parameter '{0}' inherits conflicting constraints '{1}' and '{2}'"},
	ErrConWithValCon:             {SevError, "Struct-constrained type parameter used as constraint", "Type parameter '{1}' has the 'struct' constraint so '{1}' cannot be used as a constraint for '{0}'"},
	ErrOverrideWithConstraints:   {SevError, "Constraints on override", "Constraints for override and explicit interface implementation methods are inherited from the base method, so they cannot be specified directly, except for either a 'class', or a 'struct' constraint."},
	ErrNewConstraintNotSatisfied: {SevError, "new() constraint not satisfied", "'{2}' must be a non-abstract type with a public parameterless constructor in order to use it as parameter '{1}' in the generic type or method '{0}'"},
	ErrGenericConstraintRefType:  {SevError, "Constraint not satisfied", "The type '{3}' cannot be used as type parameter '{2}' in the generic type or method '{0}'. There is no implicit reference conversion from '{3}' to '{1}'."},
	ErrGenericConstraintTyVar:    {SevError, "Constraint not satisfied", "The type '{3}' cannot be used as type parameter '{2}' in the generic type or method '{0}'. There is no boxing conversion or type parameter conversion from '{3}' to '{1}'."},
	ErrGenericConstraintValType:  {SevError, "Constraint not satisfied", "The type '{3}' cannot be used as type parameter '{2}' in the generic type or method '{0}'. There is no boxing conversion from '{3}' to '{1}'."},
	ErrBadBoundType:              {SevError, "Invalid constraint", "'{0}' is not a valid constraint. A type used as a constraint must be an interface, a non-sealed class or a type parameter."},
	ErrSpecialTypeAsBound:        {SevError, "Special class as constraint", "Constraint cannot be special class '{0}'"},
	ErrBadVisBound:               {SevError, "Inconsistent constraint accessibility", "Inconsistent accessibility: constraint type '{1}' is less accessible than '{0}'"},
	ErrBadConstraintType:         {SevError, "Invalid constraint type", "Invalid constraint type. A type used as a constraint must be an interface, a non-sealed class or a type parameter."},
	ErrConstraintIsStaticClass:   {SevError, "Static class as constraint", "'{0}': static classes cannot be used as constraints"},

	ErrBadMemberFlag:                        {SevError, "Invalid modifier", "The modifier '{0}' is not valid for this item"},
	ErrStaticNotVirtual:                     {SevError, "Static member marked virtual", "A static member cannot be marked as '{0}'"},
	ErrOverrideNotNew:                       {SevError, "Override marked new or virtual", "A member '{0}' marked as override cannot be marked as new or virtual"},
	ErrStaticConstParam:                     {SevError, "Static constructor with parameters", "'{0}': a static constructor must be parameterless"},
	ErrExternHasBody:                        {SevError, "Extern with body", "'{0}' cannot be extern and declare a body"},
	ErrAbstractAndExtern:                    {SevError, "Abstract and extern", "'{0}' cannot be both extern and abstract"},
	ErrSealedNonOverride:                    {SevError, "Sealed without override", "'{0}' cannot be sealed because it is not an override"},
	ErrInvalidPropertyAccessMod:             {SevError, "Accessor not more restrictive", "The accessibility modifier of the '{0}' accessor must be more restrictive than the property or indexer '{1}'"},
	ErrDuplicatePropertyAccessMods:          {SevError, "Both accessors restricted", "Cannot specify accessibility modifiers for both accessors of the property or indexer '{0}'"},
	ErrAccessModMissingAccessor:             {SevError, "Accessor modifier on single accessor", "'{0}': accessibility modifiers on accessors may only be used if the property or indexer has both a get and a set accessor"},
	ErrAbstractSealedStatic:                 {SevError, "Abstract type sealed or static", "'{0}': an abstract type cannot be sealed or static"},
	ErrSealedStaticClass:                    {SevError, "Static and sealed type", "'{0}': a type cannot be both static and sealed"},
	ErrPrivateAbstractAccessor:              {SevError, "Private accessor on abstract property", "'{0}': abstract properties cannot have private accessors"},
	ErrAbstractHasBody:                      {SevError, "Abstract with body", "'{0}' cannot declare a body because it is marked abstract"},
	ErrConcreteMissingBody:                  {SevError, "Missing body", "'{0}' must declare a body because it is not marked abstract, extern, or partial"},
	ErrAbstractAndSealed:                    {SevError, "Abstract and sealed", "'{0}' cannot be both abstract and sealed"},
	ErrAbstractNotVirtual:                   {SevError, "Abstract and virtual", "The abstract {0} '{1}' cannot be marked virtual"},
	ErrAbstractInConcreteClass:              {SevError, "Abstract member in concrete type", "'{0}' is abstract but it is contained in non-abstract type '{1}'"},
	ErrStaticConstructorWithAccessModifiers: {SevError, "Static constructor with access modifiers", "'{0}': access modifiers are not allowed on static constructors"},
	ErrNewVirtualInSealed:                   {SevError, "New virtual member in sealed type", "'{0}' is a new virtual member in sealed type '{1}'"},
	ErrOperatorsMustBeStatic:                {SevError, "Operator not public static", "User-defined operator '{0}' must be declared static and public"},
	ErrOnlyClassesCanContainDestructors:     {SevError, "Destructor outside class", "Only class types can contain destructors"},
	ErrVirtualPrivate:                       {SevError, "Private virtual member", "'{0}': virtual or abstract members cannot be private"},
	ErrProtectedInStruct:                    {SevError, "Protected member in struct", "'{0}': new protected member declared in struct"},
	ErrVolatileAndReadonly:                  {SevError, "Volatile and readonly", "'{0}': a field cannot be both volatile and readonly"},
	ErrNoNamespacePrivate:                   {SevError, "Private namespace member", "Elements defined in a namespace cannot be explicitly declared as private, protected, protected internal, or private protected"},

	ErrInstanceMemberInStaticClass: {SevError, "Instance member in static class", "'{0}': cannot declare instance members in a static class"},
	ErrConstructorInStaticClass:    {SevError, "Instance constructor in static class", "Static classes cannot have instance constructors"},
	ErrDestructorInStaticClass:     {SevError, "Destructor in static class", "Static classes cannot contain destructors"},
	ErrStaticDerivedFromNonObject:  {SevError, "Static class with base", "Static class '{0}' cannot derive from type '{1}'. Static classes must derive from object."},
	ErrStaticClassInterfaceImpl:    {SevError, "Static class implements interface", "'{0}': static classes cannot implement interfaces"},
	ErrOperatorInStaticClass:       {SevError, "Operator in static class", "'{0}': static classes cannot contain user-defined operators"},
	ErrIndexerInStaticClass:        {SevError, "Indexer in static class", "'{0}': cannot declare indexers in a static class"},

	ErrPartialMemberCannotBeAbstract:                            {SevError, "Abstract partial member", "A partial member cannot have the 'abstract' modifier"},
	ErrPartialMemberOnlyInPartialClass:                          {SevError, "Partial member outside partial type", "A partial member must be declared within a partial type"},
	ErrPartialMemberNotExplicit:                                 {SevError, "Partial explicit implementation", "A partial member may not explicitly implement an interface member"},
	ErrPartialMethodExtensionDifference:                         {SevError, "Partial extension mismatch", "Both partial method declarations must be extension methods or neither may be an extension method"},
	ErrPartialMethodOnlyOneLatent:                               {SevError, "Multiple defining declarations", "A partial method may not have multiple defining declarations"},
	ErrPartialMethodOnlyOneActual:                               {SevError, "Multiple implementing declarations", "A partial method may not have multiple implementing declarations"},
	ErrPartialMethodParamsDifference:                            {SevError, "Partial params mismatch", "Both partial method declarations must use a params parameter or neither may use a params parameter"},
	ErrPartialMethodMustHaveLatent:                              {SevError, "Missing defining declaration", "No defining declaration found for implementing declaration of partial method '{0}'"},
	ErrPartialMethodInconsistentConstraints:                     {SevError, "Partial constraint mismatch", "Partial method declarations of '{0}' have inconsistent constraints for type parameter '{1}'"},
	ErrPartialMemberStaticDifference:                            {SevError, "Partial static mismatch", "Both partial member declarations must be static or neither may be static"},
	ErrPartialMemberUnsafeDifference:                            {SevError, "Partial unsafe mismatch", "Both partial member declarations must be unsafe or neither may be unsafe"},
	ErrPartialMemberReadOnlyDifference:                          {SevError, "Partial readonly mismatch", "Both partial member declarations must be readonly or neither may be readonly"},
	ErrPartialMethodWithAccessibilityModsMustHaveImplementation: {SevError, "Partial method needs implementation", "Partial method '{0}' must have an implementation part because it has accessibility modifiers."},
	ErrPartialMethodWithNonVoidReturnMustHaveAccessMods:         {SevError, "Partial method needs accessibility", "Partial method '{0}' must have accessibility modifiers because it has a non-void return type."},
	ErrPartialMethodWithOutParamMustHaveAccessMods:              {SevError, "Partial method needs accessibility", "Partial method '{0}' must have accessibility modifiers because it has 'out' parameters."},
	ErrPartialMethodWithExtendedModMustHaveAccessMods:           {SevError, "Partial method needs accessibility", "Partial method '{0}' must have accessibility modifiers because it has a 'virtual', 'override', 'sealed', 'new', or 'extern' modifier."},
	ErrPartialMemberAccessibilityDifference:                     {SevError, "Partial accessibility mismatch", "Both partial member declarations must have identical accessibility modifiers."},
	ErrPartialMemberExtendedModDifference:                       {SevError, "Partial modifier mismatch", "Both partial member declarations must have identical combinations of 'virtual', 'override', 'sealed', and 'new' modifiers."},
	ErrPartialMethodReturnTypeDifference:                        {SevError, "Partial return type mismatch", "Both partial method declarations must have the same return type."},
	ErrPartialMemberRefReturnDifference:                         {SevError, "Partial ref return mismatch", "Partial member declarations must have matching ref return values."},
	ErrPartialPropertyMissingImplementation:                     {SevError, "Partial property needs implementation", "Partial property '{0}' must have an implementation part."},
	ErrPartialPropertyMissingDefinition:                         {SevError, "Partial property needs definition", "Partial property '{0}' must have a definition part."},
	ErrPartialPropertyDuplicateDefinition:                       {SevError, "Multiple defining declarations", "A partial property may not have multiple defining declarations, and cannot be an auto-property."},
	ErrPartialPropertyDuplicateImplementation:                   {SevError, "Multiple implementing declarations", "A partial property may not have multiple implementing declarations"},
	ErrPartialPropertyMissingAccessor:                           {SevError, "Partial accessor missing", "Property accessor '{0}' must be implemented because it is declared on the definition part"},
	ErrPartialPropertyUnexpectedAccessor:                        {SevError, "Partial accessor unexpected", "Property accessor '{0}' does not implement any accessor declared on the definition part"},
	ErrPartialPropertyTypeDifference:                            {SevError, "Partial property type mismatch", "Both partial property declarations must have the same type."},
	ErrPartialMemberRefKindDifference:                           {SevError, "Partial parameter modifier mismatch", "Both partial member declarations of '{0}' must use the same parameter modifiers"},

	ErrForwardedTypeIsNested:                  {SevError, "Nested type forwarded", "Cannot forward type '{0}' because it is a nested type of '{1}'"},
	ErrCycleInTypeForwarder:                   {SevError, "Type forwarder cycle", "The type forwarder for type '{0}' in assembly '{1}' causes a cycle"},
	ErrDuplicateTypeForwarder:                 {SevError, "Duplicate type forwarder", "'{0}' duplicate TypeForwardedToAttribute"},
	ErrExportedTypeConflictsWithDeclaration:   {SevError, "Exported type conflicts with declaration", "Type '{0}' exported from module '{1}' conflicts with type declared in primary module of this assembly."},
	ErrExportedTypesConflict:                  {SevError, "Exported types conflict", "Type '{0}' exported from module '{1}' conflicts with type '{2}' exported from module '{3}'."},
	ErrForwardedTypeConflictsWithDeclaration:  {SevError, "Forwarded type conflicts with declaration", "Forwarded type '{0}' conflicts with type declared in primary module of this assembly."},
	ErrForwardedTypesConflict:                 {SevError, "Forwarded types conflict", "Type '{0}' forwarded to assembly '{1}' conflicts with type '{2}' forwarded to assembly '{3}'."},
	ErrForwardedTypeConflictsWithExportedType: {SevError, "Forwarded type conflicts with exported type", "Type '{0}' forwarded to assembly '{1}' conflicts with type '{2}' exported from module '{3}'."},
}

// ID returns the stable identifier, e.g. "CS0102".
func (c Code) ID() string {
	return fmt.Sprintf("CS%04d", int(c))
}

// ParseCode accepts "CS0102", "cs102" or "102".
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && strings.EqualFold(s[:2], "CS") {
		s = s[2:]
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return UnknownCode, fmt.Errorf("bad diagnostic code %q: %w", s, err)
	}
	return Code(n), nil
}

// Known reports whether the code has a registry entry.
func (c Code) Known() bool {
	_, ok := codeSpecs[c]
	return ok && c != UnknownCode
}

// DefaultSeverity is the severity the code is reported with before policy.
func (c Code) DefaultSeverity() Severity {
	spec, ok := codeSpecs[c]
	if !ok {
		return SevError
	}
	return spec.sev
}

func (c Code) Title() string {
	spec, ok := codeSpecs[c]
	if !ok {
		return codeSpecs[UnknownCode].title
	}
	return spec.title
}

// Template returns the message template with {n} placeholders.
func (c Code) Template() string {
	spec, ok := codeSpecs[c]
	if !ok {
		return codeSpecs[UnknownCode].format
	}
	return spec.format
}

// Format substitutes positional arguments into the code's template.
// Missing arguments render as empty strings.
func (c Code) Format(args ...string) string {
	tmpl := c.Template()
	var b strings.Builder
	b.Grow(len(tmpl) + 16*len(args))
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		if ch != '{' {
			b.WriteByte(ch)
			continue
		}
		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		n, err := strconv.Atoi(tmpl[i+1 : i+end])
		if err != nil {
			b.WriteByte(ch)
			continue
		}
		if n < len(args) {
			b.WriteString(args[n])
		}
		i += end
	}
	return b.String()
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// AllCodes returns every registered code in ascending order.
func AllCodes() []Code {
	out := make([]Code, 0, len(codeSpecs))
	for c := range codeSpecs {
		if c != UnknownCode {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
