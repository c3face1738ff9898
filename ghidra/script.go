package ghidra

// script.go holds the automation script handed to the headless analyzer.
// The script is opaque, versioned configuration data at this layer: it is
// written into the workspace verbatim and never parsed or executed locally.

import (
	"fmt"
	"os"

	"github.com/stoyse/spectrace/workspace"
)

// ScriptVersion identifies the embedded extraction script. Bump it whenever
// scriptSource changes so runs can be correlated with the script that
// produced them.
const ScriptVersion = "1.2.0"

// ScriptFilename is the name the script is written under inside a workspace.
// It must match the public class name in the script source.
const ScriptFilename = "DecompileAll.java"

// CompletionMarker is printed by the script as its final statement. The
// runner's success predicate looks for it in stdout.
const CompletionMarker = "Decompilation completed successfully"

// Names of the files the script writes into its working directory.
const (
	AssemblyFile   = "assembly_output.txt"
	DecompiledFile = "decompiled_output.txt"
	MetadataFile   = "metadata_output.txt"
)

const scriptSource = `// Spectrace extraction script, version ` + ScriptVersion + `
// Decompiles every defined function of the imported program and writes
// assembly, decompiled C and program metadata into the working directory.
//@category Analysis

import ghidra.app.script.GhidraScript;
import ghidra.app.decompiler.DecompInterface;
import ghidra.app.decompiler.DecompileResults;
import ghidra.program.model.address.Address;
import ghidra.program.model.address.AddressSetView;
import ghidra.program.model.listing.*;
import ghidra.program.model.mem.MemoryBlock;
import java.io.FileWriter;

public class DecompileAll extends GhidraScript {

    @Override
    public void run() throws Exception {

        FileWriter asmWriter = new FileWriter("` + AssemblyFile + `");
        FileWriter decWriter = new FileWriter("` + DecompiledFile + `");
        FileWriter metaWriter = new FileWriter("` + MetadataFile + `");

        try {
            Program program = currentProgram;

            // Make sure the automatic analysis pass has completed before we
            // walk the listing; headless import normally runs it, but a
            // pre-analyzed project re-open may not.
            if (!program.getFunctionManager().getFunctions(true).hasNext()) {
                analyzeAll(program);
            }

            Listing listing = program.getListing();

            DecompInterface decompiler = new DecompInterface();
            decompiler.openProgram(program);

            FunctionManager functionManager = program.getFunctionManager();
            int functionsFound = 0;
            int functionsProcessed = 0;
            int functionsDecompiled = 0;

            for (Function function : functionManager.getFunctions(true)) {
                functionsFound++;

                // Thunks and externals carry no bodies worth emitting.
                if (function.isThunk() || function.isExternal()) {
                    continue;
                }
                functionsProcessed++;

                Address entryPoint = function.getEntryPoint();
                String functionName = function.getName();

                asmWriter.write("\n=== Function: " + functionName + " @ " + entryPoint + " ===\n");
                decWriter.write("\n=== Function: " + functionName + " @ " + entryPoint + " ===\n");

                AddressSetView body = function.getBody();
                for (Address addr : body.getAddresses(true)) {
                    CodeUnit codeUnit = listing.getCodeUnitAt(addr);
                    if (codeUnit != null) {
                        asmWriter.write(addr + ": " + codeUnit.toString() + "\n");
                    }
                }

                try {
                    DecompileResults results = decompiler.decompileFunction(function, 30, monitor);
                    if (results.decompileCompleted()) {
                        decWriter.write(results.getDecompiledFunction().getC() + "\n\n");
                        functionsDecompiled++;
                    } else {
                        decWriter.write("// Decompilation failed: " + results.getErrorMessage() + "\n\n");
                    }
                } catch (Exception e) {
                    decWriter.write("// Decompilation error: " + e.getMessage() + "\n\n");
                }
            }
            decompiler.dispose();

            if (functionsFound == 0) {
                asmWriter.write("No functions were identified in this binary.\n");
                asmWriter.write("Likely causes: packing, obfuscation, stripped symbols,\n");
                asmWriter.write("or a non-standard/raw image the loader could not model.\n");
                asmWriter.write("\nExecutable memory regions for manual inspection:\n");
                for (MemoryBlock block : program.getMemory().getBlocks()) {
                    if (block.isExecute()) {
                        asmWriter.write("  " + block.getName() + ": " + block.getStart() + " - " + block.getEnd() + "\n");
                    }
                }
            }

            metaWriter.write("Program: " + program.getName() + "\n");
            metaWriter.write("Language: " + program.getLanguage().getLanguageID() + "\n");
            metaWriter.write("Compiler: " + program.getCompilerSpec().getCompilerSpecID() + "\n");
            metaWriter.write("Architecture: " + program.getLanguage().getProcessor() + "\n");
            metaWriter.write("Address Size: " + program.getAddressFactory().getDefaultAddressSpace().getSize() + "\n");
            metaWriter.write("Functions Found: " + functionsFound + "\n");
            metaWriter.write("Functions Processed: " + functionsProcessed + "\n");
            metaWriter.write("Functions Decompiled: " + functionsDecompiled + "\n");
            metaWriter.write("Memory Blocks: " + program.getMemory().getBlocks().length + "\n");

            println("` + CompletionMarker + `");

        } finally {
            asmWriter.close();
            decWriter.close();
            metaWriter.close();
        }
    }
}
`

// WriteScript writes the extraction script into the workspace and returns
// its path.
func WriteScript(ws *workspace.Workspace) (string, error) {
	path := ws.Path(ScriptFilename)
	if err := os.WriteFile(path, []byte(scriptSource), 0o644); err != nil {
		return "", fmt.Errorf("failed to write analysis script: %w", err)
	}
	return path, nil
}
