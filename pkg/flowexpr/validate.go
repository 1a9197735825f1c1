package flowexpr

import (
	"fmt"
	"math"
)

// MaxArity stands for "no upper bound" in arity checks.
const MaxArity = math.MaxInt

// ValidateArityAndAnyType checks that the child count lies in
// [minArity, maxArity] and, when types are given, that every child's declared
// return type overlaps Object or one of types.
func ValidateArityAndAnyType(minArity, maxArity int, types ...ReturnType) ValidateFunc {
	var accepted ReturnType
	for _, t := range types {
		accepted |= t
	}
	return func(e *Expression) error {
		if err := checkArity(e, minArity, maxArity); err != nil {
			return err
		}
		if accepted == 0 {
			return nil
		}
		for _, c := range e.children {
			if err := checkType(c, accepted); err != nil {
				return err
			}
		}
		return nil
	}
}

// ValidateOrder checks positional child types: expected are required,
// optional may follow.
func ValidateOrder(optional []ReturnType, expected ...ReturnType) ValidateFunc {
	return func(e *Expression) error {
		if err := checkArity(e, len(expected), len(expected)+len(optional)); err != nil {
			return err
		}
		for i, c := range e.children {
			var want ReturnType
			if i < len(expected) {
				want = expected[i]
			} else {
				want = optional[i-len(expected)]
			}
			if err := checkType(c, want); err != nil {
				return err
			}
		}
		return nil
	}
}

// Common validators.
var (
	// ValidateAtLeastOne requires one or more children of any type.
	ValidateAtLeastOne = ValidateArityAndAnyType(1, MaxArity)

	// ValidateUnary requires exactly one child of any type.
	ValidateUnary = ValidateArityAndAnyType(1, 1)

	// ValidateBinary requires exactly two children of any type.
	ValidateBinary = ValidateArityAndAnyType(2, 2)

	// ValidateNoChildren rejects any children.
	ValidateNoChildren = ValidateArityAndAnyType(0, 0)

	// ValidateNumber requires one or more numeric children.
	ValidateNumber = ValidateArityAndAnyType(1, MaxArity, ReturnNumber)

	// ValidateTwoOrMoreNumbers requires two or more numeric children.
	ValidateTwoOrMoreNumbers = ValidateArityAndAnyType(2, MaxArity, ReturnNumber)

	// ValidateUnaryNumber requires exactly one numeric child.
	ValidateUnaryNumber = ValidateArityAndAnyType(1, 1, ReturnNumber)

	// ValidateBinaryNumber requires exactly two numeric children.
	ValidateBinaryNumber = ValidateArityAndAnyType(2, 2, ReturnNumber)

	// ValidateUnaryString requires exactly one string child.
	ValidateUnaryString = ValidateArityAndAnyType(1, 1, ReturnString)

	// ValidateBinaryString requires exactly two string children.
	ValidateBinaryString = ValidateArityAndAnyType(2, 2, ReturnString)

	// ValidateUnaryArray requires exactly one array child.
	ValidateUnaryArray = ValidateArityAndAnyType(1, 1, ReturnArray)
)

func checkArity(e *Expression, minArity, maxArity int) error {
	n := len(e.children)
	switch {
	case n < minArity && minArity == maxArity:
		return fmt.Errorf("should have %d children", minArity)
	case n > maxArity && minArity == maxArity:
		return fmt.Errorf("should have %d children", minArity)
	case n < minArity:
		return fmt.Errorf("should have at least %d children", minArity)
	case n > maxArity:
		return fmt.Errorf("can't have more than %d children", maxArity)
	}
	return nil
}

// checkType fails when c can produce neither an object (whose runtime kind is
// unknown) nor any accepted kind.
func checkType(c *Expression, accepted ReturnType) error {
	rt := c.ReturnType()
	if rt.Overlaps(ReturnObject) || rt.Overlaps(accepted) {
		return nil
	}
	return fmt.Errorf("%s is not a %s expression", c, accepted)
}

// validateLambda checks the (collection, iterator, body) shape.
func validateLambda(e *Expression) error {
	if err := checkArity(e, 3, 3); err != nil {
		return err
	}
	if _, err := lambdaName(e); err != nil {
		return err
	}
	return nil
}
