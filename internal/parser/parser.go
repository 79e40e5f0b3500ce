// Package parser reads the line-oriented textual program format spec.md §6
// describes into a vm.Program. It is a direct port of original_source's
// hand-written recursive-descent scanner (src/parser.rs): a two-state
// machine (expecting a block label, or appending instructions to the block
// most recently opened) driven line by line, rather than a grammar-framework
// parser, matching the original's own approach to this exact problem.
package parser

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/cheekyjit/cheekyjit/internal/vm"
)

// Parse reads a textual program and returns the vm.Program it describes, or
// the first error encountered (errors about a specific line carry its 1-based
// line number; the final undeclared-label check names the labels instead).
func Parse(src string) (*vm.Program, error) {
	p := &parser{
		program:      vm.NewProgram(),
		blockTargets: map[string]vm.BlockID{},
		declared:     map[string]bool{},
		expectLabel:  true,
	}

	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()

		// A line starting with an alphanumeric character always begins a new
		// block, even if the previous block's instructions were incomplete;
		// this matches the original's line-by-line state reset.
		if raw != "" && isAlnum(rune(raw[0])) {
			p.expectLabel = true
		}

		line := stripComment(strings.TrimSpace(raw))
		if line == "" {
			continue
		}

		if err := p.parseLine(line, lineNum); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}

	if err := p.validateAllBlocksDeclared(); err != nil {
		return nil, err
	}
	return p.program, nil
}

type parser struct {
	program      *vm.Program
	blockTargets map[string]vm.BlockID
	declared     map[string]bool
	expectLabel  bool
	current      vm.BlockID
}

func (p *parser) parseLine(line string, lineNum int) error {
	if p.expectLabel {
		if !strings.HasSuffix(line, ":") {
			return fmt.Errorf("parser: expected block label on line %d", lineNum)
		}
		label := blockLabel(line)
		if p.declared[label] {
			return fmt.Errorf("parser: duplicate block label %q on line %d", label, lineNum)
		}
		p.declared[label] = true
		p.current = p.getOrCreateBlock(label)
		p.expectLabel = false
		return nil
	}
	return p.parseInstruction(line, lineNum)
}

func (p *parser) parseInstruction(line string, lineNum int) error {
	mnemonic, rest, hasOperands := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch {
	case !hasOperands && line == "INCR":
		p.append(vm.Instruction{Op: vm.OpIncrement})
		return nil
	case !hasOperands && line == "BREAK":
		p.append(vm.Instruction{Op: vm.OpBreakpoint})
		return nil
	case !hasOperands && line == "RET":
		p.append(vm.Instruction{Op: vm.OpExit})
		return nil
	case !hasOperands && line == "NOP":
		p.append(vm.Instruction{Op: vm.OpNop})
		return nil
	}

	switch mnemonic {
	case "LOAD_IMM":
		imm, err := parseUint(rest, lineNum)
		if err != nil {
			return err
		}
		p.append(vm.Instruction{Op: vm.OpLoadImmediate, Imm: vm.Value(imm)})
		return nil

	case "LOAD_RANDOM":
		imm, err := parseUint(rest, lineNum)
		if err != nil {
			return err
		}
		p.append(vm.Instruction{Op: vm.OpLoadRandom, Imm: vm.Value(imm)})
		return nil

	case "LOAD_REG":
		reg, err := parseRegister(rest, lineNum)
		if err != nil {
			return err
		}
		p.append(vm.Instruction{Op: vm.OpLoad, Reg: reg})
		return nil

	case "STORE_REG":
		reg, err := parseRegister(rest, lineNum)
		if err != nil {
			return err
		}
		p.append(vm.Instruction{Op: vm.OpStore, Reg: reg})
		return nil

	case "LESS_THAN":
		reg, err := parseRegister(rest, lineNum)
		if err != nil {
			return err
		}
		p.append(vm.Instruction{Op: vm.OpLessThan, Reg: reg})
		return nil

	case "GET_LOCAL":
		local, err := parseLocal(rest, lineNum)
		if err != nil {
			return err
		}
		p.append(vm.Instruction{Op: vm.OpGetLocal, Local: local})
		return nil

	case "SET_LOCAL":
		local, err := parseLocal(rest, lineNum)
		if err != nil {
			return err
		}
		p.append(vm.Instruction{Op: vm.OpSetLocal, Local: local})
		return nil

	case "JUMP":
		target, err := p.blockTargetLiteral(rest, lineNum)
		if err != nil {
			return err
		}
		p.append(vm.Instruction{Op: vm.OpJump, Target: target})
		return nil

	case "JUMP_EITHER":
		trueLit, falseLit, ok := strings.Cut(rest, " ")
		if !ok {
			return fmt.Errorf("parser: JUMP_EITHER needs two operands on line %d", lineNum)
		}
		trueTarget, err := p.blockTargetLiteral(strings.TrimSpace(trueLit), lineNum)
		if err != nil {
			return err
		}
		falseTarget, err := p.blockTargetLiteral(strings.TrimSpace(falseLit), lineNum)
		if err != nil {
			return err
		}
		p.append(vm.Instruction{Op: vm.OpJumpConditional, TrueTarget: trueTarget, FalseTarget: falseTarget})
		return nil
	}

	return fmt.Errorf("parser: unexpected instruction %q on line %d", mnemonic, lineNum)
}

func (p *parser) append(instr vm.Instruction) {
	p.program.Append(p.current, instr)
}

func (p *parser) getOrCreateBlock(label string) vm.BlockID {
	if id, ok := p.blockTargets[label]; ok {
		return id
	}
	id := p.program.MakeBlock()
	p.blockTargets[label] = id
	return id
}

func (p *parser) blockTargetLiteral(operand string, lineNum int) (vm.BlockID, error) {
	label, ok := strings.CutPrefix(operand, "#")
	if !ok || label == "" {
		return 0, fmt.Errorf("parser: unexpected block reference %q on line %d", operand, lineNum)
	}
	return p.getOrCreateBlock(label), nil
}

func (p *parser) validateAllBlocksDeclared() error {
	var undeclared []string
	for label := range p.blockTargets {
		if !p.declared[label] {
			undeclared = append(undeclared, label)
		}
	}
	if len(undeclared) == 0 {
		return nil
	}
	return fmt.Errorf("parser: missing declaration for block reference(s): %s", strings.Join(undeclared, ", "))
}

func parseUint(s string, lineNum int) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parser: failed to parse immediate on line %d: %w", lineNum, err)
	}
	return v, nil
}

func parseRegister(s string, lineNum int) (vm.Register, error) {
	n, ok := extractPrefixedUint(s, "r")
	if !ok {
		return 0, fmt.Errorf("parser: unexpected register literal %q on line %d", s, lineNum)
	}
	return vm.Register(n), nil
}

func parseLocal(s string, lineNum int) (vm.Local, error) {
	n, ok := extractPrefixedUint(s, ".")
	if !ok {
		return 0, fmt.Errorf("parser: unexpected local literal %q on line %d", s, lineNum)
	}
	return vm.Local(n), nil
}

func extractPrefixedUint(s, prefix string) (uint64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func blockLabel(line string) string {
	i := 0
	for i < len(line) && (isAlnum(rune(line[i])) || line[i] == '_') {
		i++
	}
	return line[:i]
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return strings.TrimSpace(line[:i])
	}
	return line
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
